// Пакет filter — безопасные фильтры политик.
//
// Политика хранит фильтр как AST (JSON), а не как строку-выражение:
// вычислитель работает только над белым списком примитивных полей тикета
// и не имеет доступа ни к каким объектам хоста.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Операторы листового условия.
const (
	OpEq       = "="
	OpNe       = "!="
	OpGt       = ">"
	OpGte      = ">="
	OpLt       = "<"
	OpLte      = "<="
	OpContains = "contains"
	OpIn       = "in"
)

// Node — узел AST. Ровно одно из полей заполнено.
type Node struct {
	And  []*Node    `json:"and,omitempty"`
	Or   []*Node    `json:"or,omitempty"`
	Not  *Node      `json:"not,omitempty"`
	Cond *Condition `json:"cond,omitempty"`
}

type Condition struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
}

// Env — белый список примитивов, над которыми разрешено вычисление.
// Значения: string, bool, float64 (все числа приводятся к float64),
// []string для мультизначных полей (теги).
type Env map[string]interface{}

// Parse декодирует сохранённый AST. Пустая строка — пустой фильтр (nil),
// который матчится всегда.
func Parse(raw string) (*Node, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var n Node
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, fmt.Errorf("ошибка декодирования фильтра: %w", err)
	}
	if err := validate(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

func validate(n *Node) error {
	if n == nil {
		return nil
	}
	set := 0
	if len(n.And) > 0 {
		set++
		for _, c := range n.And {
			if err := validate(c); err != nil {
				return err
			}
		}
	}
	if len(n.Or) > 0 {
		set++
		for _, c := range n.Or {
			if err := validate(c); err != nil {
				return err
			}
		}
	}
	if n.Not != nil {
		set++
		if err := validate(n.Not); err != nil {
			return err
		}
	}
	if n.Cond != nil {
		set++
		switch n.Cond.Op {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpContains, OpIn:
		default:
			return fmt.Errorf("неизвестный оператор фильтра: %q", n.Cond.Op)
		}
	}
	if set != 1 {
		return fmt.Errorf("узел фильтра должен содержать ровно одну ветку")
	}
	return nil
}

// Eval вычисляет фильтр над окружением. nil-узел матчится всегда.
// Ошибка возвращается при обращении к полю вне белого списка или при
// несовместимых типах; вызывающая сторона трактует её как пустой фильтр.
func Eval(n *Node, env Env) (bool, error) {
	if n == nil {
		return true, nil
	}
	switch {
	case len(n.And) > 0:
		for _, c := range n.And {
			ok, err := Eval(c, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case len(n.Or) > 0:
		for _, c := range n.Or {
			ok, err := Eval(c, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case n.Not != nil:
		ok, err := Eval(n.Not, env)
		return !ok, err
	case n.Cond != nil:
		return evalCond(n.Cond, env)
	}
	return false, fmt.Errorf("пустой узел фильтра")
}

func evalCond(c *Condition, env Env) (bool, error) {
	val, ok := env[c.Field]
	if !ok {
		return false, fmt.Errorf("поле %q недоступно фильтру", c.Field)
	}

	switch c.Op {
	case OpEq, OpNe:
		eq, err := looseEqual(val, c.Value)
		if err != nil {
			return false, err
		}
		if c.Op == OpNe {
			return !eq, nil
		}
		return eq, nil

	case OpGt, OpGte, OpLt, OpLte:
		a, aok := toFloat(val)
		b, bok := toFloat(c.Value)
		if !aok || !bok {
			return false, fmt.Errorf("оператор %q требует числовых операндов", c.Op)
		}
		switch c.Op {
		case OpGt:
			return a > b, nil
		case OpGte:
			return a >= b, nil
		case OpLt:
			return a < b, nil
		default:
			return a <= b, nil
		}

	case OpContains:
		s, sok := val.(string)
		sub, subok := c.Value.(string)
		if !sok || !subok {
			return false, fmt.Errorf("оператор contains требует строковых операндов")
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub)), nil

	case OpIn:
		list, lok := c.Value.([]interface{})
		if !lok {
			return false, fmt.Errorf("оператор in требует список значений")
		}
		for _, item := range list {
			eq, err := looseEqual(val, item)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	}

	return false, fmt.Errorf("неизвестный оператор фильтра: %q", c.Op)
}

// looseEqual сравнивает значения с числовой коэрцией: JSON всегда даёт
// float64, а в Env числа могут приходить как int.
func looseEqual(a, b interface{}) (bool, error) {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf, nil
		}
		return false, nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv, nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv, nil
	case []string:
		bv, ok := b.(string)
		if !ok {
			return false, nil
		}
		for _, s := range av {
			if s == bv {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("несравнимый тип %T", a)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
