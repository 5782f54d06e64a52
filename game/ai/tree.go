package ai

// NewEnemyTree builds the stock melee enemy tree:
//
//	dead          -> stand still
//	mid-swing     -> wait for the attack clip
//	in range, off cooldown -> face and attack
//	in range, on cooldown  -> stand and face
//	detected      -> steer toward the target, or settle if there is nowhere to go
//	otherwise     -> idle
//
// Once the chase branch has computed Movement it always succeeds, so no later branch
// writes Movement again in the same tick.
//
// The tree holds no agent state and may be shared by every agent with this behavior.
func NewEnemyTree() *BehaviorTree {
	return &BehaviorTree{Root: &Selector{Name: "Root", Children: []Node{
		&Sequence{Name: "Dead", Children: []Node{
			IsDead(),
			StopMovement(),
		}},
		&Sequence{Name: "FinishAttack", Children: []Node{
			IsAttacking(),
			Attack(),
		}},
		&Sequence{Name: "Attack", Children: []Node{
			IsPlayerInAttackRange(),
			CanAttack(),
			FacePlayer(),
			Attack(),
		}},
		&Sequence{Name: "HoldPosition", Children: []Node{
			IsPlayerInAttackRange(),
			StopMovement(),
			FacePlayer(),
		}},
		&Sequence{Name: "Chase", Children: []Node{
			IsPlayerInDetectionRange(),
			IsPlayerNotInAttackRange(),
			CalculateDirectionToPlayer(),
			&Selector{Name: "Advance", Children: []Node{
				&Sequence{Name: "Run", Children: []Node{
					MoveTowardPlayer(),
					BeginChase(),
					FaceMovementDirection(),
				}},
				Settle(),
			}},
		}},
		Idle(),
	}}}
}
