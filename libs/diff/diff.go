package diff

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	odiff "github.com/r3labs/diff/v3"

	"flatfin/mq/mq"
)

func GetCustomDiffer() *odiff.Differ {
	ret, err := odiff.NewDiffer(odiff.CustomValueDiffers(&UUIDComparer{}, &TimeComparer{}))
	if err != nil {
		panic(err)
	}
	return ret
}

// ExpenseChanges diffs two versions of an expense and renders the changelog
// as field changes suitable for an update event. Returns nil when nothing
// changed.
func ExpenseChanges[T any](before, after T) ([]mq.FieldChange, error) {
	changelog, err := GetCustomDiffer().Diff(before, after)
	if err != nil {
		return nil, fmt.Errorf("failed to diff expense versions: %w", err)
	}
	if len(changelog) == 0 {
		return nil, nil
	}

	changes := make([]mq.FieldChange, 0, len(changelog))
	for _, c := range changelog {
		changes = append(changes, mq.FieldChange{
			Field: strings.Join(c.Path, "."),
			From:  renderValue(c.From),
			To:    renderValue(c.To),
		})
	}
	return changes, nil
}

func renderValue(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

type UUIDComparer struct{}

var (
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// Match check is field match this custom type
func (c UUIDComparer) Match(a, b reflect.Value) bool {
	aok := a.Kind() == uuidType.Kind() && a.Type() == uuidType
	bok := b.Kind() == uuidType.Kind() && b.Type() == uuidType
	return (aok && bok) || (a.Kind() == reflect.Invalid && bok) || (b.Kind() == reflect.Invalid && aok)
}

// Diff check is diff or not
func (c UUIDComparer) Diff(_ odiff.DiffType, _ odiff.DiffFunc, cl *odiff.Changelog, path []string, a reflect.Value, b reflect.Value, _ interface{}) error {
	valA := reflect.Indirect(a)
	valB := reflect.Indirect(b)

	// One side nil counts as a change
	if !valA.IsValid() || !valB.IsValid() {
		if valA.IsValid() != valB.IsValid() {
			cl.Add(odiff.UPDATE, path, a.Interface(), b.Interface())
		}
		return nil
	}

	u1 := valA.Interface().(uuid.UUID)
	u2 := valB.Interface().(uuid.UUID)

	// Report one Update instead of diffing the 16 bytes individually
	if u1 != u2 {
		cl.Add(odiff.UPDATE, path, u1, u2)
	}
	return nil
}

// InsertParentDiffer do something with parent,
// uuid is leaf, so do not thing
func (c UUIDComparer) InsertParentDiffer(_ func(path []string, a reflect.Value, b reflect.Value, p interface{}) error) {
	// do not thing
}

type TimeComparer struct{}

var (
	timeType = reflect.TypeOf(time.Time{})
)

// Match check is field match this custom type
func (c TimeComparer) Match(a, b reflect.Value) bool {
	aok := a.Kind() == timeType.Kind() && a.Type() == timeType
	bok := b.Kind() == timeType.Kind() && b.Type() == timeType
	return (aok && bok) || (a.Kind() == reflect.Invalid && bok) || (b.Kind() == reflect.Invalid && aok)
}

// Diff compares the two times as instants, not their wall/monotonic fields.
func (c TimeComparer) Diff(_ odiff.DiffType, _ odiff.DiffFunc, cl *odiff.Changelog, path []string, a reflect.Value, b reflect.Value, _ interface{}) error {
	valA := reflect.Indirect(a)
	valB := reflect.Indirect(b)

	if !valA.IsValid() || !valB.IsValid() {
		if valA.IsValid() != valB.IsValid() {
			cl.Add(odiff.UPDATE, path, a.Interface(), b.Interface())
		}
		return nil
	}

	t1 := valA.Interface().(time.Time)
	t2 := valB.Interface().(time.Time)

	if !t1.Equal(t2) {
		cl.Add(odiff.UPDATE, path, t1, t2)
	}
	return nil
}

// InsertParentDiffer do something with parent,
// time is leaf, so do not thing
func (c TimeComparer) InsertParentDiffer(_ func(path []string, a reflect.Value, b reflect.Value, p interface{}) error) {
	// do not thing
}
