package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rebeliceyang/multifilter/internal/models"
)

// ErrEmptyField is returned for a condition without a field name
var ErrEmptyField = errors.New("condition has no field")

// sqlOperators resolves stored operators and their default labels to SQL.
// Keys are lower case.
var sqlOperators = map[string]models.FilterOperator{
	"=":                     models.OpEqual,
	"!=":                    models.OpNotEqual,
	"<>":                    models.OpNotEqual,
	">":                     models.OpGreaterThan,
	">=":                    models.OpGreaterOrEqual,
	"<":                     models.OpLessThan,
	"<=":                    models.OpLessOrEqual,
	"like":                  models.OpLike,
	"ilike":                 models.OpILike,
	"is null":               models.OpIsNull,
	"is not null":           models.OpIsNotNull,
	models.LabelEqual:       models.OpEqual,
	models.LabelNotEqual:    models.OpNotEqual,
	models.LabelGreaterThan: models.OpGreaterThan,
	models.LabelLessThan:    models.OpLessThan,
}

// Builder generates parameterized PostgreSQL WHERE clauses from filter trees
type Builder struct {
	ops *Operators
}

// NewBuilder creates a new filter builder
func NewBuilder(ops *Operators) *Builder {
	if ops == nil {
		ops = DefaultOperators()
	}
	return &Builder{ops: ops}
}

// BuildWhere generates a WHERE clause from a serialized tree.
// An empty tree yields an empty clause.
func (b *Builder) BuildWhere(nodes []*Node) (string, []interface{}, error) {
	clause, args, err := b.join(nodes, " AND ", 1, false)
	if err != nil {
		return "", nil, err
	}
	if clause == "" {
		return "", nil, nil
	}
	return "WHERE " + clause, args, nil
}

// BuildQuery generates a full SELECT over schema.table restricted by the tree
func (b *Builder) BuildQuery(schema, table string, nodes []*Node, limit int) (string, []interface{}, error) {
	where, args, err := b.BuildWhere(nodes)
	if err != nil {
		return "", nil, err
	}

	sql := "SELECT * FROM " + qualifiedName(schema, table)
	if where != "" {
		sql += " " + where
	}
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	return sql, args, nil
}

// buildSequence joins an AND-sequence; empty members are dropped
func (b *Builder) buildSequence(nodes []*Node, paramIndex int) (string, []interface{}, error) {
	return b.join(nodes, " AND ", paramIndex, true)
}

// join builds nodes and joins the non-empty clauses with sep, parenthesizing
// the result when wrap is set and more than one clause remains
func (b *Builder) join(nodes []*Node, sep string, paramIndex int, wrap bool) (string, []interface{}, error) {
	var clauses []string
	var args []interface{}
	currentParam := paramIndex

	for _, n := range nodes {
		clause, nodeArgs, err := b.buildNode(n, currentParam)
		if err != nil {
			return "", nil, err
		}
		if clause == "" {
			continue
		}
		clauses = append(clauses, clause)
		args = append(args, nodeArgs...)
		currentParam += len(nodeArgs)
	}

	switch len(clauses) {
	case 0:
		return "", nil, nil
	case 1:
		return clauses[0], args, nil
	}
	joined := strings.Join(clauses, sep)
	if wrap {
		joined = "(" + joined + ")"
	}
	return joined, args, nil
}

// buildDisjunction joins OR operands. An operand with no restriction, such
// as an empty set, makes the whole disjunction unrestricted.
func (b *Builder) buildDisjunction(nodes []*Node, paramIndex int) (string, []interface{}, error) {
	var clauses []string
	var args []interface{}
	currentParam := paramIndex
	unrestricted := false

	for _, n := range nodes {
		clause, nodeArgs, err := b.buildNode(n, currentParam)
		if err != nil {
			return "", nil, err
		}
		if clause == "" {
			unrestricted = true
			continue
		}
		clauses = append(clauses, clause)
		args = append(args, nodeArgs...)
		currentParam += len(nodeArgs)
	}

	switch {
	case unrestricted || len(clauses) == 0:
		return "", nil, nil
	case len(clauses) == 1:
		return clauses[0], args, nil
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args, nil
}

// buildNode recursively builds one node
func (b *Builder) buildNode(n *Node, paramIndex int) (string, []interface{}, error) {
	if n == nil {
		return "", nil, nil
	}

	switch n.Kind {
	case KindLeaf:
		return b.buildCondition(n, paramIndex)
	case KindList, KindAnd:
		return b.buildSequence(n.Children, paramIndex)
	case KindOr:
		return b.buildDisjunction(n.Children, paramIndex)
	case KindNot:
		if len(n.Children) == 0 {
			return "", nil, nil
		}
		clause, args, err := b.buildNode(n.Children[0], paramIndex)
		if err != nil {
			return "", nil, err
		}
		if clause == "" {
			// the inner clause holds for every row
			return "FALSE", nil, nil
		}
		return "NOT (" + clause + ")", args, nil
	default:
		return "", nil, nil
	}
}

// buildCondition builds a single filter condition
func (b *Builder) buildCondition(leaf *Node, paramIndex int) (string, []interface{}, error) {
	if strings.TrimSpace(leaf.Field) == "" {
		return "", nil, ErrEmptyField
	}
	column := pgx.Identifier{leaf.Field}.Sanitize()

	symbol := strings.ToLower(strings.TrimSpace(b.ops.Symbol(leaf.Operator)))
	if symbol == models.LabelContains {
		return fmt.Sprintf("%s::text ILIKE $%d", column, paramIndex), []interface{}{"%" + escapeLike(leaf.Value) + "%"}, nil
	}

	op, ok := sqlOperators[symbol]
	if !ok {
		return "", nil, fmt.Errorf("unsupported operator: %s", leaf.Operator)
	}

	switch op {
	case models.OpIsNull, models.OpIsNotNull:
		return fmt.Sprintf("%s %s", column, op), nil, nil
	case models.OpNotEqual:
		return fmt.Sprintf("%s <> $%d", column, paramIndex), []interface{}{leaf.Value}, nil
	default:
		return fmt.Sprintf("%s %s $%d", column, op, paramIndex), []interface{}{leaf.Value}, nil
	}
}

// qualifiedName quotes schema.table, omitting an empty schema
func qualifiedName(schema, table string) string {
	if schema == "" {
		return pgx.Identifier{table}.Sanitize()
	}
	return pgx.Identifier{schema, table}.Sanitize()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// OperatorsForType returns the operator labels worth offering for a
// PostgreSQL column type
func OperatorsForType(dataType string) []string {
	dataType = strings.ToLower(dataType)
	switch {
	case strings.Contains(dataType, "int") || strings.Contains(dataType, "numeric") ||
		strings.Contains(dataType, "real") || strings.Contains(dataType, "double") ||
		strings.Contains(dataType, "date") || strings.Contains(dataType, "time"):
		return []string{
			models.LabelEqual, models.LabelNotEqual,
			models.LabelGreaterThan, models.LabelLessThan,
			string(models.OpGreaterOrEqual), string(models.OpLessOrEqual),
			string(models.OpIsNull), string(models.OpIsNotNull),
		}
	case strings.Contains(dataType, "char") || strings.Contains(dataType, "text"):
		return []string{
			models.LabelEqual, models.LabelNotEqual,
			models.LabelContains,
			string(models.OpLike), string(models.OpILike),
			string(models.OpIsNull), string(models.OpIsNotNull),
		}
	case strings.Contains(dataType, "bool"):
		return []string{
			models.LabelEqual, models.LabelNotEqual,
			string(models.OpIsNull), string(models.OpIsNotNull),
		}
	default:
		return []string{
			models.LabelEqual, models.LabelNotEqual,
			models.LabelContains,
			string(models.OpIsNull), string(models.OpIsNotNull),
		}
	}
}
