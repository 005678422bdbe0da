// Package pagination implements opaque cursor pagination shared by the task and
// tool listings.
//
// A cursor is a protobuf-encoded structpb.Struct carried as base64url text.
// Callers pass it back unmodified and never inspect it.
package pagination

import (
	"encoding/base64"
	"math"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// MaxPageSize is the upper bound applied to every page size and cursor limit.
const MaxPageSize = 100

const (
	fieldOffset  = "offset"
	fieldLimit   = "limit"
	fieldContext = "context"
)

// Cursor is the decoded pagination position.
type Cursor struct {
	Offset  int
	Limit   int
	Context string
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// EncodeCursor serializes c into an opaque token.
func EncodeCursor(c Cursor) string {
	fields := map[string]*structpb.Value{
		fieldOffset: structpb.NewNumberValue(float64(c.Offset)),
		fieldLimit:  structpb.NewNumberValue(float64(c.Limit)),
	}
	if c.Context != "" {
		fields[fieldContext] = structpb.NewStringValue(c.Context)
	}

	// Deterministic so equal cursors produce equal tokens.
	raw, err := proto.MarshalOptions{Deterministic: true}.Marshal(&structpb.Struct{Fields: fields})
	if err != nil {
		// structpb with numbers and strings always marshals.
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by EncodeCursor. It reports false for
// empty or malformed tokens and for tokens missing a numeric offset or limit.
func DecodeCursor(token string) (*Cursor, bool) {
	if token == "" {
		return nil, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, false
	}

	var s structpb.Struct
	if err := proto.Unmarshal(raw, &s); err != nil {
		return nil, false
	}

	offset, ok := intField(&s, fieldOffset)
	if !ok || offset < 0 {
		return nil, false
	}
	limit, ok := intField(&s, fieldLimit)
	if !ok || limit < 0 {
		return nil, false
	}

	c := &Cursor{Offset: offset, Limit: limit}
	if v, ok := s.GetFields()[fieldContext]; ok {
		c.Context = v.GetStringValue()
	}
	return c, true
}

func intField(s *structpb.Struct, name string) (int, bool) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Paginate returns the page of items addressed by cursor. A missing or invalid
// cursor starts at offset 0 with pageSize; pageSize is clamped to
// [1, MaxPageSize]. NextCursor is set only when items remain past the page.
func Paginate[T any](items []T, cursor string, pageSize int) Page[T] {
	return PaginateScoped("", items, cursor, pageSize)
}

// PaginateScoped is Paginate for cursors tagged with a listing scope. A cursor
// issued for a different scope is treated like no cursor. A cursor's limit can
// shrink the page but never grow it past pageSize.
func PaginateScoped[T any](scope string, items []T, cursor string, pageSize int) Page[T] {
	pageSize = clampPageSize(pageSize)

	offset, limit := 0, pageSize
	if c, ok := DecodeCursor(cursor); ok && c.Context == scope {
		offset = c.Offset
		if c.Limit > 0 && c.Limit < pageSize {
			limit = c.Limit
		}
	}

	if offset >= len(items) {
		return Page[T]{Items: []T{}}
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	page := Page[T]{Items: items[offset:end]}
	if offset+limit < len(items) {
		page.NextCursor = EncodeCursor(Cursor{Offset: offset + limit, Limit: limit, Context: scope})
	}
	return page
}

func clampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
