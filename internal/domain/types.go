package domain

import "time"

type AgentID string
type MessageID string

// Sender identifies who authored a simulator message.
type Sender string

const (
	SenderUser Sender = "USER"
	SenderBot  Sender = "BOT"
)

// MessageStatus mirrors the delivery ticks shown in a WhatsApp chat.
type MessageStatus string

const (
	StatusSent      MessageStatus = "SENT"
	StatusDelivered MessageStatus = "DELIVERED"
	StatusRead      MessageStatus = "READ"
)

// IntegrationType names the outbound messaging gateway an agent connects to.
// Only the Evolution API is supported today.
type IntegrationType string

const IntegrationEvolution IntegrationType = "evolution"

type Timestamp = time.Time
