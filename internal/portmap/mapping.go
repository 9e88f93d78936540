package portmap

import "github.com/marmos91/vxi11/internal/xdr"

// Mapping is the portmap v2 (prog, vers, prot, port) tuple: the argument
// to GETPORT (with Port left 0) and the result element of DUMP.
type Mapping struct {
	Prog uint32
	Vers uint32
	Prot uint32
	Port uint32
}

func (m *Mapping) MarshalXDR(e *xdr.Encoder) {
	e.WriteUint32(m.Prog)
	e.WriteUint32(m.Vers)
	e.WriteUint32(m.Prot)
	e.WriteUint32(m.Port)
}

func (m *Mapping) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	if m.Prog, err = d.ReadUint32(); err != nil {
		return err
	}
	if m.Vers, err = d.ReadUint32(); err != nil {
		return err
	}
	if m.Prot, err = d.ReadUint32(); err != nil {
		return err
	}
	if m.Port, err = d.ReadUint32(); err != nil {
		return err
	}
	return nil
}

// decodeGetportResult decodes a GETPORT reply body: a bare uint32 port,
// zero if no mapping exists.
func decodeGetportResult(data []byte) (uint32, error) {
	return xdr.NewDecoder(data).ReadUint32()
}
