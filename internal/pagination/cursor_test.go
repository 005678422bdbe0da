package pagination

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestEncodeDecodeCursor(t *testing.T) {
	token := EncodeCursor(Cursor{Offset: 40, Limit: 20, Context: "tasks"})
	require.NotEmpty(t, token)

	c, ok := DecodeCursor(token)
	require.True(t, ok)
	assert.Equal(t, 40, c.Offset)
	assert.Equal(t, 20, c.Limit)
	assert.Equal(t, "tasks", c.Context)
}

func TestEncodeCursorIsDeterministic(t *testing.T) {
	a := EncodeCursor(Cursor{Offset: 3, Limit: 7, Context: "x"})
	b := EncodeCursor(Cursor{Offset: 3, Limit: 7, Context: "x"})
	assert.Equal(t, a, b)
}

func structToken(t *testing.T, fields map[string]interface{}) string {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	raw, err := proto.Marshal(s)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func TestDecodeCursorRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"not protobuf", base64.RawURLEncoding.EncodeToString([]byte{0xff, 0xff, 0xff})},
		{"missing offset", structToken(t, map[string]interface{}{"limit": 10})},
		{"missing limit", structToken(t, map[string]interface{}{"offset": 10})},
		{"string offset", structToken(t, map[string]interface{}{"offset": "10", "limit": 10})},
		{"negative offset", structToken(t, map[string]interface{}{"offset": -1, "limit": 10})},
		{"fractional limit", structToken(t, map[string]interface{}{"offset": 0, "limit": 2.5})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := DecodeCursor(tt.token)
			assert.False(t, ok)
			assert.Nil(t, c)
		})
	}
}

func sequence(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPaginateRoundTrip(t *testing.T) {
	items := sequence(237)

	for _, size := range []int{1, 2, 7, 20, 99, MaxPageSize} {
		t.Run(fmt.Sprintf("page_size_%d", size), func(t *testing.T) {
			var got []int
			cursor := ""
			for pages := 0; ; pages++ {
				require.Less(t, pages, len(items)+1, "pagination did not terminate")
				page := Paginate(items, cursor, size)
				assert.LessOrEqual(t, len(page.Items), size)
				got = append(got, page.Items...)
				if page.NextCursor == "" {
					break
				}
				cursor = page.NextCursor
			}
			assert.Equal(t, items, got)
		})
	}
}

func TestPaginateClampsPageSize(t *testing.T) {
	items := sequence(250)

	page := Paginate(items, "", 1000)
	assert.Len(t, page.Items, MaxPageSize)
	assert.NotEmpty(t, page.NextCursor)

	page = Paginate(items, "", 0)
	assert.Len(t, page.Items, 1)
}

func TestPaginateInvalidCursorStartsOver(t *testing.T) {
	items := sequence(30)

	fresh := Paginate(items, "", 10)
	garbage := Paginate(items, "definitely-not-a-cursor", 10)
	assert.Equal(t, fresh, garbage)
}

func TestPaginateNoNextCursorOnExactEnd(t *testing.T) {
	items := sequence(20)

	page := Paginate(items, "", 20)
	assert.Len(t, page.Items, 20)
	assert.Empty(t, page.NextCursor)
}

func TestPaginateOffsetPastEnd(t *testing.T) {
	items := sequence(5)
	cursor := EncodeCursor(Cursor{Offset: 50, Limit: 10})

	page := Paginate(items, cursor, 10)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextCursor)
}

func TestPaginateCursorLimitCappedByPageSize(t *testing.T) {
	items := sequence(50)

	oversized := EncodeCursor(Cursor{Offset: 0, Limit: 100, Context: "tasks"})
	page := PaginateScoped("tasks", items, oversized, 20)
	assert.Equal(t, sequence(20), page.Items)

	next, ok := DecodeCursor(page.NextCursor)
	require.True(t, ok)
	assert.Equal(t, 20, next.Offset)
	assert.Equal(t, 20, next.Limit)

	smaller := EncodeCursor(Cursor{Offset: 10, Limit: 5, Context: "tasks"})
	page = PaginateScoped("tasks", items, smaller, 20)
	assert.Equal(t, []int{10, 11, 12, 13, 14}, page.Items)
}

func TestPaginateScopedIgnoresForeignCursor(t *testing.T) {
	items := sequence(10)
	foreign := EncodeCursor(Cursor{Offset: 5, Limit: 5, Context: "tools"})

	page := PaginateScoped("tasks", items, foreign, 5)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, page.Items)

	next, ok := DecodeCursor(page.NextCursor)
	require.True(t, ok)
	assert.Equal(t, "tasks", next.Context)
	assert.Equal(t, 5, next.Offset)
}
