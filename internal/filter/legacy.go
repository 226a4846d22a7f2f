package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLegacy разбирает унаследованный строковый формат фильтра
// ("priority >= 2 AND team_id = 3") в AST. Поддерживаются только AND/OR
// без скобок (AND связывает сильнее); всё прочее отклоняется.
// Новые политики должны сохранять AST напрямую.
func ParseLegacy(expr string) (*Node, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	orParts := splitKeyword(expr, "OR")
	orNodes := make([]*Node, 0, len(orParts))
	for _, part := range orParts {
		andParts := splitKeyword(part, "AND")
		andNodes := make([]*Node, 0, len(andParts))
		for _, cond := range andParts {
			node, err := parseLegacyCond(cond)
			if err != nil {
				return nil, err
			}
			andNodes = append(andNodes, node)
		}
		if len(andNodes) == 1 {
			orNodes = append(orNodes, andNodes[0])
		} else {
			orNodes = append(orNodes, &Node{And: andNodes})
		}
	}

	if len(orNodes) == 1 {
		return orNodes[0], nil
	}
	return &Node{Or: orNodes}, nil
}

func splitKeyword(s, kw string) []string {
	fields := strings.Fields(s)
	var parts []string
	var current []string
	for _, f := range fields {
		if strings.EqualFold(f, kw) {
			parts = append(parts, strings.Join(current, " "))
			current = nil
			continue
		}
		current = append(current, f)
	}
	parts = append(parts, strings.Join(current, " "))
	return parts
}

var legacyOps = []string{OpGte, OpLte, OpNe, OpGt, OpLt, OpEq, OpContains}

func parseLegacyCond(cond string) (*Node, error) {
	cond = strings.TrimSpace(cond)
	for _, op := range legacyOps {
		idx := strings.Index(cond, " "+op+" ")
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(cond[:idx])
		rawVal := strings.TrimSpace(cond[idx+len(op)+2:])
		if field == "" || rawVal == "" {
			break
		}
		return &Node{Cond: &Condition{Field: field, Op: op, Value: parseLegacyValue(rawVal)}}, nil
	}
	return nil, fmt.Errorf("не удалось разобрать условие унаследованного фильтра: %q", cond)
}

func parseLegacyValue(raw string) interface{} {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return strings.Trim(raw, `'"`)
}
