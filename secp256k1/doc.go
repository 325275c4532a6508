// Package secp256k1 implements [group.Group] over the secp256k1 curve
// using github.com/decred/dcrd/dcrec/secp256k1/v4.
//
// Points encode as 33-byte SEC1 compressed keys, so a group public key
// produced by a DKG over this curve is directly usable as an ECDSA or
// BIP-340 verification key. Scalars encode as 32-byte big-endian integers
// and SetBytes refuses values that are not below the group order.
package secp256k1
