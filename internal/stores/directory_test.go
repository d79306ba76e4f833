package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	dir := Directory{
		"1":  "Steam",
		"25": "Epic Games Store",
		"3":  "",
	}

	tests := []struct {
		name    string
		storeID string
		want    string
	}{
		{name: "known store", storeID: "1", want: "Steam"},
		{name: "another known store", storeID: "25", want: "Epic Games Store"},
		{name: "unknown store falls back to raw ID", storeID: "999", want: "Store ID: 999"},
		{name: "empty name treated as unknown", storeID: "3", want: "Store ID: 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dir.Resolve(tt.storeID))
		})
	}
}

func TestResolveOnNilDirectory(t *testing.T) {
	var dir Directory
	assert.Equal(t, "Store ID: 7", dir.Resolve("7"))
}
