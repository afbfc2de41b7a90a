package mongostore

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/erasmus-gp/egpcore/egperr"
)

// translateFilter recognises the narrow family of "properties" bitmask
// clauses genepool.Interface.InitialGenerationQuery actually emits
// ("properties & N = M", optionally ANDed with "(properties >> N) & 1 =
// 1") and turns them into the equivalent Mongo bitwise filter. Anything
// richer is rejected rather than guessed at: spec's Non-goals exclude a
// general SQL dialect generator, and a silently wrong translation would
// be worse than an explicit error telling the caller to use
// genepool/pgstore for ad hoc filter_sql instead.
func translateFilter(filterSQL string, literals []any) (bson.M, error) {
	filterSQL = strings.TrimSpace(filterSQL)
	if filterSQL == "" {
		return bson.M{}, nil
	}
	clauses := strings.Split(filterSQL, " AND ")
	and := make(bson.A, 0, len(clauses))
	for _, clause := range clauses {
		m, err := translateClause(strings.TrimSpace(clause), literals)
		if err != nil {
			return nil, err
		}
		and = append(and, m)
	}
	if len(and) == 1 {
		return and[0].(bson.M), nil
	}
	return bson.M{"$and": and}, nil
}

var (
	maskEq  = regexp.MustCompile(`^properties\s*&\s*(\d+)\s*=\s*(\d+)$`)
	shiftEq = regexp.MustCompile(`^\(properties\s*>>\s*(\d+)\)\s*&\s*1\s*=\s*1$`)
)

func translateClause(clause string, _ []any) (bson.M, error) {
	if m := maskEq.FindStringSubmatch(clause); m != nil {
		mask, _ := strconv.ParseInt(m[1], 10, 64)
		want, _ := strconv.ParseInt(m[2], 10, 64)
		return bson.M{"$expr": bson.M{"$eq": bson.A{
			bson.M{"$bitAnd": bson.A{"$properties", mask}}, want,
		}}}, nil
	}
	if m := shiftEq.FindStringSubmatch(clause); m != nil {
		bit, _ := strconv.ParseInt(m[1], 10, 64)
		return bson.M{"$expr": bson.M{"$eq": bson.A{
			bson.M{"$bitAnd": bson.A{bson.M{"$toLong": bson.M{"$floor": bson.M{"$divide": bson.A{"$properties", int64(1) << bit}}}}, 1}}, 1,
		}}}, nil
	}
	return nil, egperr.New(egperr.StructuralError, "unsupported filter fragment for mongostore").WithSubject(clause)
}

var orderClause = regexp.MustCompile(`^(\w+)\s+(ASC|DESC)$`)

// translateOrder recognises a single "column ASC|DESC" fragment, the
// only shape genepool.Interface currently emits ("generation ASC").
func translateOrder(orderSQL string) (field string, desc bool) {
	m := orderClause.FindStringSubmatch(strings.TrimSpace(orderSQL))
	if m == nil {
		return "", false
	}
	return m[1], strings.EqualFold(m[2], "DESC")
}
