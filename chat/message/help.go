package message

import (
	"fmt"
	"sort"
	"strings"
)

type helpItem struct {
	Prefix string
	Text   string
}

type help struct {
	items       []helpItem
	prefixWidth int
}

// NewCommandsHelp creates a help container from a commands registry.
func NewCommandsHelp(c Commands) *help {
	h := help{
		items: []helpItem{},
	}
	for _, def := range c {
		if def.Help == "" {
			// Skip hidden commands.
			continue
		}
		h.add(helpItem{def.Usage(), def.Help})
	}
	return &h
}

func (h *help) add(item helpItem) {
	h.items = append(h.items, item)
	if len(item.Prefix) > h.prefixWidth {
		h.prefixWidth = len(item.Prefix)
	}
}

func (h help) String() string {
	r := []string{}
	format := fmt.Sprintf("%%-%ds - %%s", h.prefixWidth)
	for _, item := range h.items {
		r = append(r, fmt.Sprintf(format, item.Prefix, item.Text))
	}

	sort.Strings(r)
	return strings.Join(r, Newline)
}
