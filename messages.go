package main

import (
	"strings"

	"github.com/hicap-oss/parley/internal/proto"
)

func lastPrompt(messages []proto.Message) string {
	var result string
	for _, msg := range messages {
		if msg.Role != proto.RoleUser {
			continue
		}
		result = msg.Content()
	}
	return result
}

func firstLine(s string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	const maxTitleLen = 50
	if r := []rune(first); len(r) > maxTitleLen {
		first = strings.TrimSpace(string(r[:maxTitleLen])) + "…"
	}
	return first
}
