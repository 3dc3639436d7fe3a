package entities

import "strings"

type SignerKind string

const (
	SignerKindCustodial SignerKind = "custodial"
	SignerKindWallet    SignerKind = "wallet"
)

// SignerMode is the tagged union selecting the submission protocol. Exactly
// one of KeyID/WalletAddress is meaningful for a given kind.
type SignerMode struct {
	Kind          SignerKind
	KeyID         string
	WalletAddress string
}

func CustodialSigner(keyID string) SignerMode {
	return SignerMode{Kind: SignerKindCustodial, KeyID: strings.TrimSpace(keyID)}
}

func WalletSigner(address string) SignerMode {
	return SignerMode{Kind: SignerKindWallet, WalletAddress: strings.TrimSpace(address)}
}

func (m SignerMode) Valid() bool {
	switch m.Kind {
	case SignerKindCustodial:
		return m.KeyID != ""
	case SignerKindWallet:
		return m.WalletAddress != ""
	default:
		return false
	}
}
