// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package mail defines the message envelope exchanged between users.
package mail

import (
	"strings"

	"github.com/google/uuid"
)

// Address names a user on a server.
type Address struct {
	User   string
	Server string
}

func (a Address) String() string {
	return a.User + "@" + a.Server
}

// Anonymous is the address top-level program code runs as.
var Anonymous = Address{User: "Anonymous", Server: "anon"}

// Draft is an address-less message under composition.
type Draft struct {
	Subject     string
	Body        string
	Attachments []string
}

// Mail is a sent message.
type Mail struct {
	ID          string
	Subject     string
	Body        string
	Attachments []string
	From        Address
	To          Address
}

// Seal addresses the draft, giving it a fresh ID.
func (d Draft) Seal(from, to Address) Mail {
	return Mail{
		ID:          uuid.NewString(),
		Subject:     d.Subject,
		Body:        d.Body,
		Attachments: append([]string(nil), d.Attachments...),
		From:        from,
		To:          to,
	}
}

// Reply answers m: it goes back to the sender, its subject is the body of
// the request and its body is the result.
func Reply(m Mail, body string, attachments ...string) Mail {
	return Draft{Subject: m.Body, Body: body, Attachments: attachments}.Seal(m.To, m.From)
}

func (m Mail) String() string {
	var sb strings.Builder
	sb.WriteString(m.From.String())
	sb.WriteString(" -> ")
	sb.WriteString(m.To.String())
	sb.WriteString(": ")
	sb.WriteString(m.Subject)
	if m.Body != "" {
		sb.WriteString(" / ")
		sb.WriteString(m.Body)
	}
	if len(m.Attachments) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(m.Attachments, ", "))
		sb.WriteString("]")
	}
	return sb.String()
}
