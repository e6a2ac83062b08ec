package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Pipeline is an ordered sequence of aggregation stages. Each stage is a
// single-operator document, mirroring the pipeline language the reasoning
// capability generates ($match, $project, $sort, $limit, $skip, $count,
// $group).
type Pipeline []Stage

// Stage is one pipeline stage: exactly one operator key mapped to its
// operator-specific parameters.
type Stage map[string]any

var supportedStages = map[string]bool{
	"$match":   true,
	"$project": true,
	"$sort":    true,
	"$limit":   true,
	"$skip":    true,
	"$count":   true,
	"$group":   true,
}

// ParsePipeline decodes a JSON array of stages and validates stage shape.
// An empty or all-whitespace input yields an empty pipeline.
func ParsePipeline(raw string) (Pipeline, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return Pipeline{}, nil
	}

	// Generated queries sometimes arrive as a single stage document rather
	// than an array; accept both.
	var stages []Stage
	if strings.HasPrefix(raw, "{") {
		var one Stage
		if err := json.Unmarshal([]byte(raw), &one); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPipeline, err)
		}
		stages = []Stage{one}
	} else {
		if err := json.Unmarshal([]byte(raw), &stages); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPipeline, err)
		}
	}

	for _, s := range stages {
		if len(s) != 1 {
			return nil, fmt.Errorf("%w: stage must have exactly one operator, got %d", ErrBadPipeline, len(s))
		}
		for op := range s {
			if !supportedStages[op] {
				return nil, fmt.Errorf("%w: unsupported stage %q", ErrBadPipeline, op)
			}
		}
	}
	return stages, nil
}

// HasSort reports whether the pipeline contains an explicit $sort stage.
func (p Pipeline) HasSort() bool {
	for _, s := range p {
		if _, ok := s["$sort"]; ok {
			return true
		}
	}
	return false
}

// Evaluate runs the pipeline over the given records. The input slice is not
// modified; every output record has the internal identifier stripped.
func (p Pipeline) Evaluate(records []Record) ([]Record, error) {
	cur := make([]Record, 0, len(records))
	for _, r := range records {
		cur = append(cur, r.Clone())
	}

	for _, stage := range p {
		var err error
		for op, arg := range stage {
			switch op {
			case "$match":
				cur, err = applyMatch(cur, arg)
			case "$project":
				cur, err = applyProject(cur, arg)
			case "$sort":
				cur, err = applySort(cur, arg)
			case "$limit":
				cur, err = applyLimit(cur, arg)
			case "$skip":
				cur, err = applySkip(cur, arg)
			case "$count":
				cur, err = applyCount(cur, arg)
			case "$group":
				cur, err = applyGroup(cur, arg)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func applyMatch(records []Record, arg any) ([]Record, error) {
	cond, ok := arg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: $match expects a document", ErrBadPipeline)
	}
	out := records[:0]
	for _, r := range records {
		m, err := matchRecord(r, cond)
		if err != nil {
			return nil, err
		}
		if m {
			out = append(out, r)
		}
	}
	return out, nil
}

func matchRecord(r Record, cond map[string]any) (bool, error) {
	for key, val := range cond {
		switch key {
		case "$and":
			list, ok := val.([]any)
			if !ok {
				return false, fmt.Errorf("%w: $and expects an array", ErrBadPipeline)
			}
			for _, sub := range list {
				subCond, ok := sub.(map[string]any)
				if !ok {
					return false, fmt.Errorf("%w: $and entries must be documents", ErrBadPipeline)
				}
				m, err := matchRecord(r, subCond)
				if err != nil || !m {
					return false, err
				}
			}
		case "$or":
			list, ok := val.([]any)
			if !ok {
				return false, fmt.Errorf("%w: $or expects an array", ErrBadPipeline)
			}
			anyMatched := false
			for _, sub := range list {
				subCond, ok := sub.(map[string]any)
				if !ok {
					return false, fmt.Errorf("%w: $or entries must be documents", ErrBadPipeline)
				}
				m, err := matchRecord(r, subCond)
				if err != nil {
					return false, err
				}
				if m {
					anyMatched = true
					break
				}
			}
			if !anyMatched {
				return false, nil
			}
		default:
			got, _ := r.Lookup(key)
			m, err := matchValue(got, val)
			if err != nil || !m {
				return false, err
			}
		}
	}
	return true, nil
}

// matchValue applies a condition to a single field value. A plain value is
// an equality test; a document applies comparison operators.
func matchValue(got, cond any) (bool, error) {
	ops, isDoc := cond.(map[string]any)
	if !isDoc {
		return valuesEqual(got, cond), nil
	}

	// A document without operator keys is a literal subdocument equality.
	hasOp := false
	for k := range ops {
		if strings.HasPrefix(k, "$") {
			hasOp = true
			break
		}
	}
	if !hasOp {
		return valuesEqual(got, cond), nil
	}

	// $options modifies $regex and is consumed alongside it.
	opts, _ := ops["$options"].(string)

	for op, operand := range ops {
		switch op {
		case "$eq":
			if !valuesEqual(got, operand) {
				return false, nil
			}
		case "$ne":
			if valuesEqual(got, operand) {
				return false, nil
			}
		case "$gt", "$gte", "$lt", "$lte":
			c, ok := compareValues(got, operand)
			if !ok {
				return false, nil
			}
			switch {
			case op == "$gt" && c <= 0,
				op == "$gte" && c < 0,
				op == "$lt" && c >= 0,
				op == "$lte" && c > 0:
				return false, nil
			}
		case "$in":
			list, ok := operand.([]any)
			if !ok {
				return false, fmt.Errorf("%w: $in expects an array", ErrBadPipeline)
			}
			found := false
			for _, item := range list {
				if valuesEqual(got, item) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		case "$regex":
			pattern, ok := operand.(string)
			if !ok {
				return false, fmt.Errorf("%w: $regex expects a string", ErrBadPipeline)
			}
			if strings.Contains(opts, "i") {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false, fmt.Errorf("%w: bad $regex: %v", ErrBadPipeline, err)
			}
			s, ok := got.(string)
			if !ok || !re.MatchString(s) {
				return false, nil
			}
		case "$options":
			// handled with $regex
		default:
			return false, fmt.Errorf("%w: unsupported operator %q", ErrBadPipeline, op)
		}
	}
	return true, nil
}

func applyProject(records []Record, arg any) ([]Record, error) {
	spec, ok := arg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: $project expects a document", ErrBadPipeline)
	}

	include := map[string]bool{}
	exclude := map[string]bool{}
	for field, v := range spec {
		if field == internalIDField {
			// _id is always excluded, whatever the projection says.
			continue
		}
		if truthyProjection(v) {
			include[field] = true
		} else {
			exclude[field] = true
		}
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		proj := Record{}
		if len(include) > 0 {
			for field := range include {
				if v, ok := r.Lookup(field); ok {
					proj[field] = v
				}
			}
		} else {
			for k, v := range r {
				if !exclude[k] {
					proj[k] = v
				}
			}
		}
		out = append(out, proj)
	}
	return out, nil
}

func truthyProjection(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

func applySort(records []Record, arg any) ([]Record, error) {
	spec, ok := arg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: $sort expects a document", ErrBadPipeline)
	}

	// JSON objects lose key order; iterate sort keys in lexical order so the
	// result is at least deterministic.
	fields := make([]string, 0, len(spec))
	for f := range spec {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	sort.SliceStable(records, func(i, j int) bool {
		for _, f := range fields {
			dir := 1
			if d, ok := toFloat(spec[f]); ok && d < 0 {
				dir = -1
			}
			a, aok := records[i].Lookup(f)
			b, bok := records[j].Lookup(f)
			if !aok && !bok {
				continue
			}
			// Missing values sort last regardless of direction.
			if !aok {
				return false
			}
			if !bok {
				return true
			}
			c, ok := compareValues(a, b)
			if !ok || c == 0 {
				continue
			}
			return c*dir < 0
		}
		return false
	})
	return records, nil
}

func applyLimit(records []Record, arg any) ([]Record, error) {
	n, ok := toFloat(arg)
	if !ok || n < 0 {
		return nil, fmt.Errorf("%w: $limit expects a non-negative number", ErrBadPipeline)
	}
	if int(n) < len(records) {
		records = records[:int(n)]
	}
	return records, nil
}

func applySkip(records []Record, arg any) ([]Record, error) {
	n, ok := toFloat(arg)
	if !ok || n < 0 {
		return nil, fmt.Errorf("%w: $skip expects a non-negative number", ErrBadPipeline)
	}
	if int(n) >= len(records) {
		return []Record{}, nil
	}
	return records[int(n):], nil
}

func applyCount(records []Record, arg any) ([]Record, error) {
	name, ok := arg.(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: $count expects a field name", ErrBadPipeline)
	}
	return []Record{{name: float64(len(records))}}, nil
}

func applyGroup(records []Record, arg any) ([]Record, error) {
	spec, ok := arg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: $group expects a document", ErrBadPipeline)
	}

	idSpec, hasID := spec["_id"]
	if !hasID {
		return nil, fmt.Errorf("%w: $group requires _id", ErrBadPipeline)
	}

	type bucket struct {
		key  any
		recs []Record
	}
	order := []string{}
	buckets := map[string]*bucket{}
	for _, r := range records {
		key := groupKey(r, idSpec)
		ks := fmt.Sprintf("%v", key)
		b, ok := buckets[ks]
		if !ok {
			b = &bucket{key: key}
			buckets[ks] = b
			order = append(order, ks)
		}
		b.recs = append(b.recs, r)
	}

	out := make([]Record, 0, len(order))
	for _, ks := range order {
		b := buckets[ks]
		row := Record{"groupKey": b.key}
		for field, accAny := range spec {
			if field == "_id" {
				continue
			}
			acc, ok := accAny.(map[string]any)
			if !ok || len(acc) != 1 {
				return nil, fmt.Errorf("%w: accumulator for %q must be a single-operator document", ErrBadPipeline, field)
			}
			for op, operand := range acc {
				v, err := accumulate(op, operand, b.recs)
				if err != nil {
					return nil, err
				}
				row[field] = v
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func groupKey(r Record, idSpec any) any {
	if idSpec == nil {
		return nil
	}
	if s, ok := idSpec.(string); ok && strings.HasPrefix(s, "$") {
		v, _ := r.Lookup(strings.TrimPrefix(s, "$"))
		return v
	}
	return idSpec
}

func accumulate(op string, operand any, recs []Record) (any, error) {
	resolve := func(r Record) (float64, bool) {
		if s, ok := operand.(string); ok && strings.HasPrefix(s, "$") {
			v, ok := r.Lookup(strings.TrimPrefix(s, "$"))
			if !ok {
				return 0, false
			}
			return toFloat(v)
		}
		return toFloat(operand)
	}

	switch op {
	case "$sum":
		total := 0.0
		for _, r := range recs {
			if v, ok := resolve(r); ok {
				total += v
			}
		}
		return total, nil
	case "$avg":
		total, n := 0.0, 0
		for _, r := range recs {
			if v, ok := resolve(r); ok {
				total += v
				n++
			}
		}
		if n == 0 {
			return nil, nil
		}
		return total / float64(n), nil
	case "$min", "$max":
		var best *float64
		for _, r := range recs {
			v, ok := resolve(r)
			if !ok {
				continue
			}
			if best == nil || (op == "$min" && v < *best) || (op == "$max" && v > *best) {
				val := v
				best = &val
			}
		}
		if best == nil {
			return nil, nil
		}
		return *best, nil
	case "$first":
		if len(recs) == 0 {
			return nil, nil
		}
		if s, ok := operand.(string); ok && strings.HasPrefix(s, "$") {
			v, _ := recs[0].Lookup(strings.TrimPrefix(s, "$"))
			return v, nil
		}
		return operand, nil
	default:
		return nil, fmt.Errorf("%w: unsupported accumulator %q", ErrBadPipeline, op)
	}
}

// SortByPriceAsc applies the default deterministic ordering: ascending by
// price per unit, sku as tiebreak, records without a price last.
func SortByPriceAsc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, aok := toFloatLookup(records[i], FieldPricePerUnit)
		b, bok := toFloatLookup(records[j], FieldPricePerUnit)
		if aok && bok {
			if a != b {
				return a < b
			}
			return records[i].SKU() < records[j].SKU()
		}
		if aok != bok {
			return aok
		}
		return records[i].SKU() < records[j].SKU()
	})
}

func toFloatLookup(r Record, path string) (float64, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func valuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// compareValues orders two values: -1, 0, or 1. The bool is false when the
// values are not comparable (mixed or unsupported types).
func compareValues(a, b any) (int, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return strings.Compare(as, bs), true
	}
	return 0, false
}
