// Package ads defines the uniform authenticated-data-structure facade that
// lets the storage node and coordinator treat the accumulator and the MPT
// interchangeably. The ADS kind is a per-process, not per-keyword,
// configuration.
package ads

import (
	"github.com/dreamware/torua/internal/accumulator"
	"github.com/dreamware/torua/internal/adserr"
	"github.com/dreamware/torua/internal/crypto"
	"github.com/dreamware/torua/internal/mpt"
)

// Kind names which concrete ADS a process runs.
type Kind string

const (
	KindAccumulator Kind = "accumulator"
	KindMPT         Kind = "mpt"
)

// ParseKind validates a --ads-mode / CLI argument string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAccumulator, KindMPT:
		return Kind(s), nil
	default:
		return "", adserr.New(adserr.KindParseError, "unknown ads kind %q", s)
	}
}

// ADS is the capability interface satisfied by both backends: add a fid,
// delete a fid, query whether a fid is (still) a member, each returning a
// proof whose wire bytes a remote verifier can check independently of this
// process's internal state, plus the instance's current root digest.
type ADS interface {
	Add(fid string) (proof []byte, err error)
	Delete(fid string) (proof []byte, err error)
	Query(fid string) (proof []byte, err error)
	RootDigest() []byte
	Len() int
	Fids() []string
}

// accumulatorADS adapts *accumulator.Accumulator to the ADS interface,
// deriving the element for each fid from the owning keyword.
type accumulatorADS struct {
	keyword string
	inner   *accumulator.Accumulator
}

// NewAccumulator wraps a fresh accumulator for keyword under the shared
// public parameters.
func NewAccumulator(params *accumulator.PublicParams, keyword string) ADS {
	return &accumulatorADS{keyword: keyword, inner: accumulator.New(params)}
}

func (a *accumulatorADS) Add(fid string) ([]byte, error) {
	e := crypto.DeriveElement(a.keyword, fid)
	p, err := a.inner.Add(e, fid)
	return p.Bytes(), err
}

func (a *accumulatorADS) Delete(fid string) ([]byte, error) {
	e := crypto.DeriveElement(a.keyword, fid)
	p, err := a.inner.Delete(e)
	return p.Bytes(), err
}

func (a *accumulatorADS) Query(fid string) ([]byte, error) {
	e := crypto.DeriveElement(a.keyword, fid)
	p, err := a.inner.Membership(e)
	return p.Bytes(), err
}

func (a *accumulatorADS) RootDigest() []byte { return a.inner.RootDigest() }
func (a *accumulatorADS) Len() int           { return a.inner.Len() }
func (a *accumulatorADS) Fids() []string     { return a.inner.Fids() }

// mptADS adapts *mpt.MPT to the ADS interface.
type mptADS struct {
	inner *mpt.MPT
}

// NewMPT wraps a fresh MPT instance for keyword.
func NewMPT(keyword string) ADS {
	return &mptADS{inner: mpt.New(keyword)}
}

func (m *mptADS) Add(fid string) ([]byte, error) {
	root, err := m.inner.Add(fid)
	p := mpt.Proof{Root: root, Member: true}
	return p.Bytes(), err
}

func (m *mptADS) Delete(fid string) ([]byte, error) {
	root, err := m.inner.Delete(fid)
	p := mpt.Proof{Root: root, Member: err == nil}
	return p.Bytes(), err
}

func (m *mptADS) Query(fid string) ([]byte, error) {
	member, root := m.inner.Membership(fid)
	p := mpt.Proof{Root: root, Member: member}
	if !member {
		return p.Bytes(), adserr.ErrNotMember
	}
	return p.Bytes(), nil
}

func (m *mptADS) RootDigest() []byte { b := m.inner.RootDigest(); return b[:] }
func (m *mptADS) Len() int           { return len(m.inner.Fids()) }
func (m *mptADS) Fids() []string     { return m.inner.Fids() }

// New constructs an ADS instance of the given kind for keyword. params may
// be nil when kind is KindMPT.
func New(kind Kind, params *accumulator.PublicParams, keyword string) (ADS, error) {
	switch kind {
	case KindAccumulator:
		if params == nil {
			return nil, adserr.New(adserr.KindInternal, "accumulator ADS requires public parameters")
		}
		return NewAccumulator(params, keyword), nil
	case KindMPT:
		return NewMPT(keyword), nil
	default:
		return nil, adserr.New(adserr.KindInternal, "unknown ads kind %q", kind)
	}
}
