package util

import (
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mdobak/go-xerrors"
	"golang.org/x/exp/constraints"
)

// GatherPaths walks root and returns files whose extension is one of exts,
// in lexical order. maxNum > 0 caps the result.
func GatherPaths(root string, maxNum int, exts ...string) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !slices.Contains(exts, strings.ToLower(filepath.Ext(s))) {
			return nil
		}
		if maxNum > 0 && len(res) >= maxNum {
			return fs.SkipAll
		}
		res = append(res, s)
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, xerrors.New("walk "+root, err)
	}
	return res, nil
}

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	return slices.Sorted(maps.Keys(m))
}

func Sum[A constraints.Integer | constraints.Float](nums []A) float64 {
	var total float64
	for _, v := range nums {
		total += float64(v)
	}
	return total
}

// Chunk splits s into consecutive slices of at most size elements.
func Chunk[A any](s []A, size int) [][]A {
	if size <= 0 {
		return [][]A{s}
	}
	var res [][]A
	for size < len(s) {
		res = append(res, s[:size:size])
		s = s[size:]
	}
	if len(s) > 0 {
		res = append(res, s)
	}
	return res
}
