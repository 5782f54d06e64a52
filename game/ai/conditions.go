package ai

// Conditions are pure reads of the Context; none of them write to it.

func IsDead() Node {
	return &ConditionNode{Name: "IsDead", Fn: func(ctx *Context) bool { return ctx.IsDead }}
}

func IsHurt() Node {
	return &ConditionNode{Name: "IsHurt", Fn: func(ctx *Context) bool { return ctx.IsHurt }}
}

func IsAttacking() Node {
	return &ConditionNode{Name: "IsAttacking", Fn: func(ctx *Context) bool { return ctx.IsAttacking }}
}

func IsPlayerInAttackRange() Node {
	return &ConditionNode{Name: "IsPlayerInAttackRange", Fn: func(ctx *Context) bool {
		return ctx.targetInAttackRange()
	}}
}

func IsPlayerNotInAttackRange() Node {
	return &Inverter{Child: IsPlayerInAttackRange()}
}

func IsPlayerInDetectionRange() Node {
	return &ConditionNode{Name: "IsPlayerInDetectionRange", Fn: func(ctx *Context) bool {
		return ctx.targetInDetectionRange()
	}}
}

// CanAttack succeeds once AttackCooldown has elapsed since the last attack.
func CanAttack() Node {
	return &ConditionNode{Name: "CanAttack", Fn: func(ctx *Context) bool {
		return ctx.now()-ctx.LastAttackTime >= ctx.Config.AttackCooldown
	}}
}
