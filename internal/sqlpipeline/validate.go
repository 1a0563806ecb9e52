package sqlpipeline

import (
	"regexp"
	"sort"
	"strings"

	pgquery "github.com/pganalyze/pg_query_go/v5"
)

// ValidationResult is the outcome of validate_sql (spec.md §4.5 node 6).
// Grounded on original_source/src/sql_validation.py's ValidationResult
// dataclass.
type ValidationResult struct {
	IsValid  bool
	Errors   []string
	Warnings []string
	SQL      string
}

// createTableRe extracts schema-qualified table names from a DDL string,
// mirroring sql_validation.py extract_table_names_from_ddl. DDL text isn't
// a query to execute, so a regex scan over CREATE TABLE statements is
// simpler and just as reliable here as parsing it — the same tradeoff the
// original makes ("Uses regex — simpler and more reliable than parsing DDL
// with sqlglot").
var createTableRe = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(\w+\.\w+)`)

// ExtractTableNamesFromDDL returns the schema-qualified table names found
// in a DDL string (pipeline_table_info).
func ExtractTableNamesFromDDL(tableInfo string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range createTableRe.FindAllStringSubmatch(tableInfo, -1) {
		out[m[1]] = true
	}
	return out
}

// ValidateSQL checks sql before execution (spec.md §4.5 node 6):
//  1. empty/whitespace-only SQL — reject
//  2. parse with a dialect-aware Postgres parser — reject on ParseError
//  3. every referenced table is in validTables — reject
//  4. SELECT * — warn, allow
//  5. leading-wildcard LIKE '%...' — warn, allow
func ValidateSQL(sql string, validTables map[string]bool) ValidationResult {
	var errors, warnings []string

	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return ValidationResult{IsValid: false, Errors: []string{"SQL is empty or whitespace-only."}, SQL: sql}
	}

	tree, err := pgquery.Parse(trimmed)
	if err != nil {
		return ValidationResult{IsValid: false, Errors: []string{"SQL syntax error: " + err.Error()}, SQL: sql}
	}

	queryTables := make(map[string]bool)
	hasStar := false
	hasLeadingWildcardLike := false
	walkParseTree(tree, func(n *walkedNode) {
		if n.schema != "" && n.relname != "" {
			queryTables[strings.ToLower(n.schema+"."+n.relname)] = true
		}
		if n.isStar {
			hasStar = true
		}
		if n.leadingWildcardLike {
			hasLeadingWildcardLike = true
		}
	})

	var unknown []string
	for t := range queryTables {
		if !validTables[t] {
			unknown = append(unknown, t)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errors = append(errors, "Unknown table(s) referenced: "+strings.Join(unknown, ", "))
	}

	if hasStar {
		warnings = append(warnings, "Query uses SELECT * — consider selecting specific columns.")
	}
	if hasLeadingWildcardLike {
		warnings = append(warnings, "LIKE pattern has a leading wildcard — this prevents index usage and may be slow.")
	}

	return ValidationResult{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
		SQL:      sql,
	}
}

// ReferencedTables returns the schema-qualified table names found in sql's
// FROM/JOIN clauses, sorted. Used by the streaming layer's execute_sql
// event projection (spec.md §4.10 "execute_sql → {..., tables}"). sql is
// assumed already validated by ValidateSQL; a parse failure here just
// yields no tables rather than propagating an error through a display path.
func ReferencedTables(sql string) []string {
	tree, err := pgquery.Parse(sql)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	walkParseTree(tree, func(n *walkedNode) {
		if n.schema == "" || n.relname == "" {
			return
		}
		t := strings.ToLower(n.schema + "." + n.relname)
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	})
	sort.Strings(out)
	return out
}

// walkedNode carries the findings walkParseTree reports for a single AST
// node: either a table reference (schema+relname), a `SELECT *` sighting,
// or a LIKE pattern with a leading wildcard.
type walkedNode struct {
	schema, relname     string
	isStar              bool
	leadingWildcardLike bool
}

// walkParseTree visits every RangeVar (table reference), A_Star (select
// list wildcard), and leading-wildcard LIKE pattern in the parsed
// statement tree, mirroring sql_validation.py's parsed.find_all(exp.Table)
// / exp.Star / exp.Like walks over a dialect-aware AST instead of sqlglot's.
func walkParseTree(tree *pgquery.ParseResult, visit func(*walkedNode)) {
	for _, raw := range tree.GetStmts() {
		walkNode(raw.GetStmt(), visit)
	}
}

func walkNode(node *pgquery.Node, visit func(*walkedNode)) {
	if node == nil {
		return
	}

	switch n := node.Node.(type) {
	case *pgquery.Node_RangeVar:
		visit(&walkedNode{schema: n.RangeVar.GetSchemaname(), relname: n.RangeVar.GetRelname()})

	case *pgquery.Node_ColumnRef:
		for _, f := range n.ColumnRef.GetFields() {
			if _, ok := f.Node.(*pgquery.Node_AStar); ok {
				visit(&walkedNode{isStar: true})
			}
		}

	case *pgquery.Node_AExpr:
		if n.AExpr.GetKind() == pgquery.A_Expr_Kind_AEXPR_LIKE {
			if c := n.AExpr.GetRexpr().GetAConst(); c != nil {
				if sval := c.GetSval(); sval != nil && strings.HasPrefix(sval.GetSval(), "%") {
					visit(&walkedNode{leadingWildcardLike: true})
				}
			}
		}
		walkNode(n.AExpr.GetLexpr(), visit)
		walkNode(n.AExpr.GetRexpr(), visit)

	case *pgquery.Node_SelectStmt:
		s := n.SelectStmt
		for _, t := range s.GetTargetList() {
			walkNode(t, visit)
		}
		for _, f := range s.GetFromClause() {
			walkNode(f, visit)
		}
		walkNode(s.GetWhereClause(), visit)
		for _, g := range s.GetGroupClause() {
			walkNode(g, visit)
		}
		walkNode(s.GetHavingClause(), visit)
		for _, sr := range s.GetSortClause() {
			walkNode(sr, visit)
		}
		walkNode(s.GetLarg(), visit)
		walkNode(s.GetRarg(), visit)
		for _, cte := range s.GetWithClause().GetCtes() {
			walkNode(cte, visit)
		}

	case *pgquery.Node_CommonTableExpr:
		walkNode(n.CommonTableExpr.GetCtequery(), visit)

	case *pgquery.Node_ResTarget:
		walkNode(n.ResTarget.GetVal(), visit)

	case *pgquery.Node_JoinExpr:
		walkNode(n.JoinExpr.GetLarg(), visit)
		walkNode(n.JoinExpr.GetRarg(), visit)
		walkNode(n.JoinExpr.GetQuals(), visit)

	case *pgquery.Node_BoolExpr:
		for _, a := range n.BoolExpr.GetArgs() {
			walkNode(a, visit)
		}

	case *pgquery.Node_SubLink:
		walkNode(n.SubLink.GetSubselect(), visit)

	case *pgquery.Node_RangeSubselect:
		walkNode(n.RangeSubselect.GetSubquery(), visit)

	case *pgquery.Node_UpdateStmt:
		u := n.UpdateStmt
		walkNode(u.GetRelation(), visit)
		for _, t := range u.GetTargetList() {
			walkNode(t, visit)
		}
		walkNode(u.GetWhereClause(), visit)
		for _, f := range u.GetFromClause() {
			walkNode(f, visit)
		}

	case *pgquery.Node_InsertStmt:
		i := n.InsertStmt
		walkNode(i.GetRelation(), visit)
		walkNode(i.GetSelectStmt(), visit)

	case *pgquery.Node_DeleteStmt:
		d := n.DeleteStmt
		walkNode(d.GetRelation(), visit)
		walkNode(d.GetWhereClause(), visit)
		for _, f := range d.GetUsingClause() {
			walkNode(f, visit)
		}
	}
}

