package vpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"simple", "/zone/home", "/zone/home"},
		{"trailing slash", "/zone/home/", "/zone/home"},
		{"double slashes", "/zone//home///alice", "/zone/home/alice"},
		{"missing leading slash", "zone/home", "/zone/home"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/zone/home/alice", Join("/zone", "home", "alice"))
	assert.Equal(t, "/zone/home/alice", Join("/zone/home/", "/alice"))
	assert.Equal(t, "/", Join("", ""))
}

func TestBaseAndParent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantBase   string
		wantParent string
	}{
		{"root", "/", "/", "/"},
		{"top level", "/zone", "zone", "/"},
		{"nested", "/zone/home/alice", "alice", "/zone/home"},
		{"file", "/zone/home/alice/data.csv", "data.csv", "/zone/home/alice"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantBase, Base(tt.path))
			assert.Equal(t, tt.wantParent, Parent(tt.path))
		})
	}
}

func TestIsAncestor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ancestor string
		path     string
		want     bool
	}{
		{"direct parent", "/zone/home", "/zone/home/alice", true},
		{"grandparent", "/zone", "/zone/home/alice", true},
		{"root is ancestor of all", "/", "/zone", true},
		{"self", "/zone/home", "/zone/home", false},
		{"sibling", "/zone/home/alice", "/zone/home/bob", false},
		{"prefix but not component", "/zone/ho", "/zone/home", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsAncestor(tt.ancestor, tt.path))
		})
	}
}

func TestRelativeTo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice/proj", RelativeTo("/zone/home/alice/proj", "/zone/home"))
	assert.Equal(t, "", RelativeTo("/zone/home", "/zone/home"))
	assert.Equal(t, "zone/home", RelativeTo("/zone/home", "/"))
	assert.Equal(t, "/other/path", RelativeTo("/other/path", "/zone"))
}

func TestAncestorsBelow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		root string
		want []string
	}{
		{
			"deep path",
			"/z/home/alice/proj/x",
			"/z",
			[]string{"/z/home/alice/proj", "/z/home/alice", "/z/home"},
		},
		{
			"direct child of root",
			"/z/home",
			"/z",
			nil,
		},
		{
			"path outside root",
			"/other/home/alice",
			"/z",
			nil,
		},
		{
			"path equals root",
			"/z",
			"/z",
			nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, AncestorsBelow(tt.path, tt.root))
		})
	}
}

func TestDepth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Depth("/"))
	assert.Equal(t, 1, Depth("/zone"))
	assert.Equal(t, 3, Depth("/zone/home/alice"))
}
