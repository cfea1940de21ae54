package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// Policy rows are role, object, action.
var policies = [][]string{
	{"Manager", "leave", "approve"},
	{"HR", "leave", "approve"},
	{"HR", "user", "assign_role"},
}

// NewEnforcer builds an in-memory enforcer with the built-in role policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := e.AddPolicies(policies); err != nil {
		return nil, err
	}
	return e, nil
}
