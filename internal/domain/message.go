package domain

import "strings"

// whatsappScheme prefixes sender and recipient addresses on the provider side.
const whatsappScheme = "whatsapp:"

// InboundMessage is one provider webhook delivery.
type InboundMessage struct {
	SID  string // provider message id, empty when the provider did not send one
	From string // sender identifier with the transport scheme stripped
	Body string
}

// SenderID strips the transport scheme from a provider address.
func SenderID(from string) string {
	return strings.TrimPrefix(strings.TrimSpace(from), whatsappScheme)
}

// WhatsAppAddress is the inverse of SenderID.
func WhatsAppAddress(id string) string {
	if strings.HasPrefix(id, whatsappScheme) {
		return id
	}
	return whatsappScheme + id
}
