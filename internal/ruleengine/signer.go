package ruleengine

import (
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/codec"
	cryptocodec "github.com/cosmos/cosmos-sdk/crypto/codec"
	"github.com/cosmos/cosmos-sdk/crypto/keys/multisig"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"

	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// pubKeyCodec is a standalone interface registry used only to unpack the
// SignerInfo.PublicKey Any into a concrete cryptotypes.PubKey. Built once;
// read-only after init, same as every cosmos-sdk app's crypto codec wiring
// (see the teacher's crypto/codec/codec.go, adapted here to the subset of key
// types a generic alert relay needs to support: it does not register the
// chain-specific ethsecp256k1 key type the teacher itself uses, since this
// service talks to arbitrary Cosmos zones, not just EVM-enabled ones).
var pubKeyCodec = func() *codec.ProtoCodec {
	registry := codectypes.NewInterfaceRegistry()
	cryptocodec.RegisterInterfaces(registry)
	return codec.NewProtoCodec(registry)
}()

// signersFromTx derives the bech32 account ids of every signer on a tx, using
// the chain's own bech32 prefix (spec §4.2, CosmosTxOutcome). Each SignerInfo
// expands to one or more account ids: a single pubkey yields one id; a legacy
// amino multisig pubkey expands to all member ids. An "Any"/unresolvable
// pubkey type is a hard reject for the rule, per spec.
func signersFromTx(prefix string, tx *txtypes.Tx) ([]string, error) {
	if tx == nil || tx.AuthInfo == nil {
		return nil, alerterrors.ErrDecode.Wrap("tx missing auth_info")
	}

	var signers []string
	for _, info := range tx.AuthInfo.SignerInfos {
		if info.PublicKey == nil {
			return nil, alerterrors.ErrDecode.Wrap("signer info missing public key")
		}

		var pubKey cryptotypes.PubKey
		if err := pubKeyCodec.UnpackAny(info.PublicKey, &pubKey); err != nil {
			return nil, alerterrors.ErrDecode.Wrapf("unsupported signer pubkey type: %s", err)
		}

		ids, err := accountIDsForPubKey(prefix, pubKey)
		if err != nil {
			return nil, err
		}
		signers = append(signers, ids...)
	}

	return signers, nil
}

func accountIDsForPubKey(prefix string, pubKey cryptotypes.PubKey) ([]string, error) {
	if ms, ok := pubKey.(multisig.PubKey); ok {
		var ids []string
		for _, member := range ms.GetPubKeys() {
			id, err := accountID(prefix, member)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	id, err := accountID(prefix, pubKey)
	if err != nil {
		return nil, err
	}
	return []string{id}, nil
}

func accountID(prefix string, pubKey cryptotypes.PubKey) (string, error) {
	if pubKey == nil {
		return "", alerterrors.ErrDecode.Wrap("nil member pubkey in multisig")
	}
	return bech32.ConvertAndEncode(prefix, sdk.AccAddress(pubKey.Address()).Bytes())
}
