package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rhizo-cli/internal/logic/core"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/pda"
	"rhizo-cli/internal/types"
)

// Kind 账户解码目标
type Kind string

const (
	KindRoute Kind = "Route"
	KindSocb  Kind = "SignedOnchainBytes"
	KindIndex Kind = "DeveloperIndex"
)

// DecodeError 账户缺失、截断或布局不符，绝不返回零值代替
type DecodeError struct {
	Kind    Kind
	Address types.Pubkey
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode account %s as %s: %v", e.Address, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Collection ls / view 的资源类别
type Collection int

const (
	CollectionRoute Collection = iota
	CollectionSocb
)

func (c Collection) String() string {
	if c == CollectionSocb {
		return "socb"
	}
	return "route"
}

var ErrUnknownCollection = errors.New("unknown collection, expected route or socb")

func ParseCollection(s string) (Collection, error) {
	switch strings.ToLower(s) {
	case "route", "routes":
		return CollectionRoute, nil
	case "socb", "socbs":
		return CollectionSocb, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, s)
	}
}

// RouteView 解码后的路由及其地址
type RouteView struct {
	Address pda.Address
	Route   *domain.Route
}

type SocbView struct {
	Address pda.Address
	Bytes   *domain.SignedOnchainBytes
}

// AccountReader 读取 owner 名下的资源账户并按写入布局反解
type AccountReader struct {
	ledger  core.Ledger
	deriver *pda.Deriver
	owner   types.Pubkey
}

func NewAccountReader(ledger core.Ledger, deriver *pda.Deriver, owner types.Pubkey) *AccountReader {
	return &AccountReader{ledger: ledger, deriver: deriver, owner: owner}
}

func (r *AccountReader) fetch(ctx context.Context, kind Kind, addr types.Pubkey) ([]byte, error) {
	data, err := r.ledger.GetAccountData(ctx, addr)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, &DecodeError{Kind: kind, Address: addr, Err: err}
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, &DecodeError{Kind: kind, Address: addr, Err: domain.ErrEmptyData}
	}
	return data, nil
}

func (r *AccountReader) ReadRoute(ctx context.Context, name string) (*RouteView, error) {
	addr, err := r.deriver.Route(name, r.owner)
	if err != nil {
		return nil, err
	}
	data, err := r.fetch(ctx, KindRoute, addr.Pubkey)
	if err != nil {
		return nil, err
	}
	route, err := domain.UnmarshalRoute(data)
	if err != nil {
		return nil, &DecodeError{Kind: KindRoute, Address: addr.Pubkey, Err: err}
	}
	return &RouteView{Address: addr, Route: route}, nil
}

// ReadSocb bump 不落链，这里用推导结果回填
func (r *AccountReader) ReadSocb(ctx context.Context, key string) (*SocbView, error) {
	addr, err := r.deriver.Socb(key, r.owner)
	if err != nil {
		return nil, err
	}
	data, err := r.fetch(ctx, KindSocb, addr.Pubkey)
	if err != nil {
		return nil, err
	}
	socb, err := domain.UnmarshalSignedOnchainBytes(data)
	if err != nil {
		return nil, &DecodeError{Kind: KindSocb, Address: addr.Pubkey, Err: err}
	}
	bump := addr.Bump
	socb.BumpSeed = &bump
	return &SocbView{Address: addr, Bytes: socb}, nil
}

// ReadIndex 读取开发者索引；尚未创建过任何资源时返回空列表
func (r *AccountReader) ReadIndex(ctx context.Context, c Collection) (*domain.DeveloperIndex, error) {
	var (
		addr pda.Address
		err  error
	)
	if c == CollectionSocb {
		addr, err = r.deriver.SocbIndex(r.owner)
	} else {
		addr, err = r.deriver.RouteIndex(r.owner)
	}
	if err != nil {
		return nil, err
	}
	data, err := r.fetch(ctx, KindIndex, addr.Pubkey)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) && errors.Is(de.Err, core.ErrAccountNotFound) {
			return &domain.DeveloperIndex{}, nil
		}
		return nil, err
	}
	idx, err := domain.UnmarshalDeveloperIndex(data)
	if err != nil {
		return nil, &DecodeError{Kind: KindIndex, Address: addr.Pubkey, Err: err}
	}
	return idx, nil
}
