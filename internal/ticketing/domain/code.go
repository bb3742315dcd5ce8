package domain

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	codePrefix   = "LUX-"
	codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	codeLength   = 8
)

// NewTicketCode returns a code of the form LUX-XXXXXXXX with 8 base-36
// characters drawn from crypto/rand. Collisions are improbable but not
// impossible; the ledger's unique index is the backstop.
func NewTicketCode() (string, error) {
	var sb strings.Builder
	sb.WriteString(codePrefix)

	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}

	return strings.ToUpper(sb.String()), nil
}
