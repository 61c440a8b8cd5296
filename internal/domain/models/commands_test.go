package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		typ  CommandType
		args []string
	}{
		{"/in site-1 cement 20 Truck 12", CommandInbound, []string{"site-1", "cement", "20", "Truck", "12"}},
		{"INBOUND s m 1 d", CommandInbound, []string{"s", "m", "1", "d"}},
		{"/out s m 2 slab", CommandOutbound, []string{"s", "m", "2", "slab"}},
		{"values s m 3 loss", CommandValue, []string{"s", "m", "3", "loss"}},
		{"  /stock  site-1 ", CommandStock, []string{"site-1"}},
		{"hello there", CommandUnknown, []string{"there"}},
		{"", CommandUnknown, nil},
	}

	for _, tc := range cases {
		cmd := ParseCommand(tc.in)
		assert.Equal(t, tc.typ, cmd.Type, tc.in)
		assert.Equal(t, tc.args, cmd.Args, tc.in)
		assert.Equal(t, tc.in, cmd.Raw)
	}
}

func TestInfoOf(t *testing.T) {
	assert.Equal(t, MaterialInfo{Name: "N/A", Unit: "N/A", Categories: []string{}}, InfoOf(nil))

	info := InfoOf(&Material{Name: "Cement", Categories: []string{"binders"}})
	assert.Equal(t, "Cement", info.Name)
	assert.Equal(t, "N/A", info.Unit)
	assert.Equal(t, []string{"binders"}, info.Categories)
}
