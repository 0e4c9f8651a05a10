package profile

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Unambiguous charset for generated WiFi passphrases (no I, O, 0, 1).
const wifiPassCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const wifiPassLength = 8

// WifiQRPayload builds the standard WIFI: string encoded into setup QR codes.
// Returns empty when either half of the pair is missing; SSID and passphrase
// are a both-or-neither pair for display purposes.
func WifiQRPayload(ssid, pass string) string {
	if ssid == "" || pass == "" {
		return ""
	}
	return fmt.Sprintf("WIFI:S:%s;T:WPA;P:%s;;", ssid, pass)
}

// GenerateWifiPass returns a random 8-character WPA passphrase.
func GenerateWifiPass() (string, error) {
	out := make([]byte, wifiPassLength)
	max := big.NewInt(int64(len(wifiPassCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = wifiPassCharset[n.Int64()]
	}
	return string(out), nil
}
