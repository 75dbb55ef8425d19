package wifi

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/angelfreak/wnet/pkg/types"
	"golang.org/x/crypto/pbkdf2"
)

// IEEE 802.11i passphrase-to-PSK mapping
const (
	pskIterations = 4096
	pskLength     = 32
)

// GeneratePSK derives the 256-bit WPA pre-shared key for essid from an 8 to
// 63 character passphrase and returns it as 64 lowercase hex digits
func GeneratePSK(essid, passphrase string) (string, error) {
	if err := types.ValidateSSID(essid); err != nil {
		return "", err
	}
	if err := types.ValidatePassphrase(passphrase); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(passphrase), []byte(essid), pskIterations, pskLength, sha1.New)
	return hex.EncodeToString(key), nil
}
