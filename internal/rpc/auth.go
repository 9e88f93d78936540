package rpc

import (
	"fmt"

	"github.com/marmos91/vxi11/internal/xdr"
)

// Authentication flavors (RFC 5531 §9, auth_flavor).
const (
	AuthNull  uint32 = 0
	AuthUnix  uint32 = 1
	AuthShort uint32 = 2
	AuthDES   uint32 = 3
)

// maxGIDs bounds the supplementary group list in an AUTH_UNIX credential,
// matching the historical NGROUPS_MAX limit most RPC implementations
// enforce.
const maxGIDs = 16

// maxMachineName bounds the AUTH_UNIX machine name field.
const maxMachineName = 255

// Auth is an opaque_auth value (RFC 5531 §9): a flavor tag plus an
// arbitrary body. VXI-11 clients only ever send AuthNull credentials and a
// AuthNull verifier, but the type is general so a caller that needs
// AUTH_UNIX (e.g. to satisfy an instrument's access-control policy) can
// build one.
type Auth struct {
	Flavor uint32
	Body   []byte
}

// NoAuth is the zero-length AUTH_NULL credential/verifier used on every
// VXI-11 call.
func NoAuth() Auth {
	return Auth{Flavor: AuthNull}
}

func (a Auth) encode(e *xdr.Encoder) {
	e.WriteUint32(a.Flavor)
	e.WriteOpaque(a.Body)
}

func decodeAuth(d *xdr.Decoder) (Auth, error) {
	flavor, err := d.ReadUint32()
	if err != nil {
		return Auth{}, err
	}
	body, err := d.ReadOpaque()
	if err != nil {
		return Auth{}, err
	}
	return Auth{Flavor: flavor, Body: body}, nil
}

// UnixAuth is the decoded body of an AUTH_UNIX credential (RFC 5531 §9.2).
type UnixAuth struct {
	Stamp       uint32
	MachineName string
	UID         uint32
	GID         uint32
	GIDs        []uint32
}

// Encode lays out the credential body; wrap the result in
// Auth{Flavor: AuthUnix, Body: ...} to use it as a CallMsg credential.
func (u *UnixAuth) Encode() []byte {
	e := xdr.NewEncoder()
	e.WriteUint32(u.Stamp)
	e.WriteString(u.MachineName)
	e.WriteUint32(u.UID)
	e.WriteUint32(uint32(u.GID))
	e.WriteUint32(uint32(len(u.GIDs)))
	for _, gid := range u.GIDs {
		e.WriteUint32(gid)
	}
	return e.Bytes()
}

// ParseUnixAuth decodes an AUTH_UNIX credential body.
func ParseUnixAuth(body []byte) (*UnixAuth, error) {
	if len(body) == 0 {
		return nil, newProtocolError("auth_unix body is empty")
	}

	d := xdr.NewDecoder(body)

	stamp, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}

	nameLen, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	if nameLen > maxMachineName {
		return nil, newProtocolError("machine name too long: %d > %d", nameLen, maxMachineName)
	}
	nameBytes, err := d.ReadFixedOpaque(int(nameLen))
	if err != nil {
		return nil, err
	}

	uid, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	gid, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}

	numGIDs, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	if numGIDs > maxGIDs {
		return nil, newProtocolError("too many gids: %d > %d", numGIDs, maxGIDs)
	}

	gids := make([]uint32, 0, numGIDs)
	for i := uint32(0); i < numGIDs; i++ {
		g, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		gids = append(gids, g)
	}

	return &UnixAuth{
		Stamp:       stamp,
		MachineName: string(nameBytes),
		UID:         uid,
		GID:         gid,
		GIDs:        gids,
	}, nil
}

func (u *UnixAuth) String() string {
	return fmt.Sprintf("UnixAuth{host=%s, uid=%d, gid=%d, gids=%v}", u.MachineName, u.UID, u.GID, u.GIDs)
}
