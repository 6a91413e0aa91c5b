package generator

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	firstNames   = []string{"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Avery", "Quinn"}
	lastNames    = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis"}
	emailDomains = []string{"gmail.com", "yahoo.com", "outlook.com", "protonmail.com"}
	streets      = []string{"Main", "Oak", "Pine", "Elm", "Cedar"}
	cities       = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}

	maskPrefixes = []string{"temp", "secure", "private", "anon", "safe"}
	maskDomains  = []string{"tempmail.com", "guerrillamail.com", "10minutemail.com"}
)

const maskAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Identity is a fabricated US-style persona. It is not checked against real data.
type Identity struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
}

// GenerateFakeIdentity builds a persona whose email is derived from the chosen name.
func (g *Generator) GenerateFakeIdentity() Identity {
	first, last := g.pick(firstNames), g.pick(lastNames)
	return Identity{
		Name:  first + " " + last,
		Email: strings.ToLower(first) + "." + strings.ToLower(last) + "@" + g.pick(emailDomains),
		Phone: fmt.Sprintf("+1 (%d) %d-%d",
			g.between(100, 999), g.between(100, 999), g.between(1000, 9999)),
		Address: fmt.Sprintf("%d %s St", g.between(1, 9999), g.pick(streets)),
		City:    g.pick(cities),
		ZipCode: strconv.Itoa(g.between(10000, 99999)),
	}
}

// GenerateMaskedEmail returns a disposable-looking address such as anon4k2z9q@tempmail.com.
func (g *Generator) GenerateMaskedEmail() string {
	var sb strings.Builder
	sb.WriteString(g.pick(maskPrefixes))
	for range 6 {
		sb.WriteByte(maskAlphabet[g.rnd.IntN(len(maskAlphabet))])
	}
	sb.WriteByte('@')
	sb.WriteString(g.pick(maskDomains))
	return sb.String()
}
