package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBoxKinds(t *testing.T) {
	tests := []struct {
		tag  string
		want Kind
	}{
		{"img", KindImage},
		{"IFRAME", KindFrame},
		{"hr", KindHorizontalRule},
		{"div", KindGeneric},
		{"span", KindGeneric},
	}
	for _, tt := range tests {
		b, err := CreateBox(nil, NewTag(tt.tag, nil), nil)
		require.NoError(t, err)
		if b.Kind != tt.want {
			t.Errorf("CreateBox(%q).Kind = %v, want %v", tt.tag, b.Kind, tt.want)
		}
	}
}

func TestCreateBoxBeforeSibling(t *testing.T) {
	root, _ := CreateBlock(nil, NewTag("div", nil), nil)
	a, _ := CreateBox(root, NewTag("a", nil), nil)
	c, _ := CreateBox(root, NewTag("c", nil), nil)
	b, err := CreateBox(root, NewTag("b", nil), c)
	require.NoError(t, err)

	var names []string
	for _, child := range root.Children() {
		names = append(names, child.TagName())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Same(t, root, b.Parent())
	assert.Same(t, root, a.Parent())
}

func TestCreateBoxUnknownSibling(t *testing.T) {
	root, _ := CreateBlock(nil, NewTag("div", nil), nil)
	stranger, _ := CreateBox(nil, NewTag("p", nil), nil)

	_, err := CreateBox(root, NewTag("span", nil), stranger)
	assert.True(t, errors.Is(err, ErrSiblingNotFound), "got %v", err)
	assert.Empty(t, root.Children())
}

func TestSetParentKeepsTreeConsistent(t *testing.T) {
	a, _ := CreateBlock(nil, NewTag("a", nil), nil)
	b, _ := CreateBlock(nil, NewTag("b", nil), nil)
	child, _ := CreateBox(a, NewTag("span", nil), nil)

	require.NoError(t, child.SetParent(b, nil))
	assert.Empty(t, a.Children())
	assert.Equal(t, []*Box{child}, b.Children())
	assert.Same(t, b, child.Parent())

	err := b.SetParent(child, nil)
	assert.ErrorIs(t, err, ErrCyclicTree)
	assert.Nil(t, b.Parent())
}

func TestSetParentBeforeSelfSibling(t *testing.T) {
	root, _ := CreateBlock(nil, NewTag("div", nil), nil)
	a, _ := CreateBox(root, NewTag("a", nil), nil)
	b, _ := CreateBox(root, NewTag("b", nil), nil)
	c, _ := CreateBox(root, NewTag("c", nil), nil)

	require.NoError(t, a.SetParent(root, c))
	assert.Equal(t, []*Box{b, a, c}, root.Children())
}

func TestAdoptChildren(t *testing.T) {
	from, _ := CreateBlock(nil, NewTag("from", nil), nil)
	to, _ := CreateBlock(nil, NewTag("to", nil), nil)
	existing, _ := CreateBox(to, NewTag("x", nil), nil)
	one, _ := CreateBox(from, NewTag("one", nil), nil)
	two, _ := CreateBox(from, NewTag("two", nil), nil)

	to.AdoptChildren(from)
	assert.Empty(t, from.Children())
	assert.Equal(t, []*Box{existing, one, two}, to.Children())
	for _, c := range to.Children() {
		assert.Same(t, to, c.Parent())
	}
}

func TestRemoveDetachesFromEngine(t *testing.T) {
	eng, root := newTestDocument(t)
	child := mustBlock(t, root, "div", nil)
	assert.Same(t, eng, child.Engine())

	child.Remove()
	assert.Nil(t, child.Parent())
	assert.Nil(t, child.Engine())
	assert.Empty(t, root.Children())
}

func TestContainingBlock(t *testing.T) {
	_, root := newTestDocument(t)
	div := mustBlock(t, root, "div", nil)
	span := mustBox(t, div, "span", nil, nil)
	em := mustBox(t, span, "em", nil, nil)

	assert.Same(t, root, root.ContainingBlock())
	assert.Same(t, root, div.ContainingBlock())
	assert.Same(t, div, span.ContainingBlock())
	assert.Same(t, div, em.ContainingBlock())
}

func TestIsSpaceOrEmpty(t *testing.T) {
	_, root := newTestDocument(t)
	blank := mustBlock(t, root, "div", nil)
	CreateTextBox(blank, "  \n ")
	full := mustBlock(t, root, "div", nil)
	CreateTextBox(full, " x ")
	img := mustBox(t, root, "img", nil, nil)

	assert.True(t, blank.IsSpaceOrEmpty())
	assert.False(t, full.IsSpaceOrEmpty())
	assert.False(t, img.IsSpaceOrEmpty())
}
