package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhizo-cli/internal/config"
	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/composer"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/reader"
	"rhizo-cli/internal/logic/txerror"
	"rhizo-cli/internal/service"
	"rhizo-cli/internal/svc"
	"rhizo-cli/internal/testutil/fakeledger"
	"rhizo-cli/internal/tools"
)

const wasmHeader = "\x00asm\x01\x00\x00\x00"

type stubConfirmer struct{ answer bool }

func (s stubConfirmer) Confirm(composer.Estimate) (bool, error) { return s.answer, nil }

type recordingUploader struct {
	deploys []domain.RouteDeploy
	err     error
}

func (u *recordingUploader) Upload(_ context.Context, d domain.RouteDeploy) (string, error) {
	u.deploys = append(u.deploys, d)
	return "ok", u.err
}

type env struct {
	sc       *svc.CliServiceContext
	ledger   *fakeledger.Ledger
	uploader *recordingUploader
	dir      string
}

func newEnv(t *testing.T, confirm bool) *env {
	t.Helper()
	cfg, err := config.LoadCliConfig(filepath.Join(t.TempDir(), "none.yaml"), true)
	require.NoError(t, err)
	ledger := fakeledger.New(consts.RhizoProgram)
	uploader := &recordingUploader{}
	sc := svc.NewCliServiceContextWith(cfg, svc.Deps{
		Ledger:    ledger,
		Signer:    sdktypes.NewAccount(),
		Confirmer: stubConfirmer{answer: confirm},
		Ingest:    uploader,
	})
	return &env{sc: sc, ledger: ledger, uploader: uploader, dir: t.TempDir()}
}

func (e *env) file(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

const helloConfig = `
route = "hello"
encodings = ["textplain"]
cacheable = false
`

func TestDeployViewListYank(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)
	wasm := e.file(t, "hello.wasm", wasmHeader+"body")
	cfg := e.file(t, "route.toml", helloConfig)

	var out bytes.Buffer
	require.NoError(t, Deploy(ctx, e.sc, wasm, cfg, &out))
	assert.Contains(t, out.String(), "route-hello")
	assert.Contains(t, out.String(), "TextPlain")

	// 上传的元数据不带 bump，CID 为源码摘要
	require.Len(t, e.uploader.deploys, 1)
	up := e.uploader.deploys[0]
	assert.Nil(t, up.Metadata.BumpSeed)
	assert.Equal(t, tools.ModuleCID([]byte(wasmHeader+"body")), up.Metadata.ModuleCID)

	out.Reset()
	require.NoError(t, View(ctx, e.sc, "route", "hello", &out))
	assert.Contains(t, out.String(), up.Metadata.ModuleCID.String())

	out.Reset()
	require.NoError(t, List(ctx, e.sc, "route", &out))
	assert.Contains(t, out.String(), "route-hello")
	assert.Contains(t, strings.ToLower(out.String()), "1 total")

	out.Reset()
	require.NoError(t, Yank(ctx, e.sc, "hello", &out))
	assert.Contains(t, out.String(), "Refund")

	_, err := e.sc.Reader.ReadRoute(ctx, "hello")
	var de *reader.DecodeError
	assert.True(t, errors.As(err, &de))
}

func TestDeploy_Declined(t *testing.T) {
	e := newEnv(t, false)
	wasm := e.file(t, "hello.wasm", wasmHeader)
	cfg := e.file(t, "route.toml", helloConfig)

	err := Deploy(context.Background(), e.sc, wasm, cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, composer.ErrCancelled)
	assert.Zero(t, e.ledger.SubmitCount())
	assert.Empty(t, e.uploader.deploys)
}

func TestDeploy_LocalFailuresBeforeNetwork(t *testing.T) {
	e := newEnv(t, true)
	cfg := e.file(t, "route.toml", helloConfig)

	err := Deploy(context.Background(), e.sc, filepath.Join(e.dir, "missing.wasm"), cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unable to read WASM module")

	badArgs := e.file(t, "bad.toml", "route = \"x\"\n[[arguments]]\nname = \"a\"\nargument_type = \"vec<map>\"\n")
	wasm := e.file(t, "x.wasm", wasmHeader)
	err = Deploy(context.Background(), e.sc, wasm, badArgs, &bytes.Buffer{})
	assert.ErrorContains(t, err, "vec<map>")

	assert.Zero(t, e.ledger.SubmitCount())
	assert.Zero(t, e.ledger.BlockhashCalls)
}

func TestDeploy_UploadFailure(t *testing.T) {
	e := newEnv(t, true)
	e.uploader.err = service.ErrPayloadTooLarge
	wasm := e.file(t, "hello.wasm", wasmHeader)
	cfg := e.file(t, "route.toml", helloConfig)

	err := Deploy(context.Background(), e.sc, wasm, cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, service.ErrPayloadTooLarge)
	assert.Equal(t, 1, e.ledger.SubmitCount())
}

func TestSocbCommands(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	require.NoError(t, SocbAlloc(ctx, e.sc, "cfg", consts.DefaultSocbAllocSize, &bytes.Buffer{}))
	require.NoError(t, SocbWrite(ctx, e.sc, "cfg", []byte("hello socb"), &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, View(ctx, e.sc, "socb", "cfg", &out))
	assert.Contains(t, out.String(), "hello socb")
	assert.Contains(t, out.String(), e.sc.Owner.String())

	out.Reset()
	require.NoError(t, List(ctx, e.sc, "socb", &out))
	assert.Contains(t, out.String(), "socb-cfg")

	// 超出分配大小
	err := SocbWrite(ctx, e.sc, "cfg", make([]byte, consts.DefaultSocbAllocSize+1), &bytes.Buffer{})
	assert.ErrorIs(t, err, txerror.ErrResourceLimit)
}

func TestView_UnknownCollection(t *testing.T) {
	e := newEnv(t, true)
	err := View(context.Background(), e.sc, "blob", "x", &bytes.Buffer{})
	assert.ErrorIs(t, err, reader.ErrUnknownCollection)
}

func TestValidateCommands(t *testing.T) {
	e := newEnv(t, true)

	var out bytes.Buffer
	require.NoError(t, ValidateConfig(e.file(t, "route.toml", helloConfig+"[[arguments]]\nname = \"n\"\nargument_type = \"vec<u64>\"\n"), &out))
	assert.Contains(t, out.String(), "route-hello")
	assert.Contains(t, out.String(), "n: vec<u64>")

	out.Reset()
	wasm := e.file(t, "ok.wasm", wasmHeader)
	require.NoError(t, ValidateModule(wasm, &out))
	assert.Contains(t, out.String(), "passed local preflight")

	assert.ErrorIs(t, ValidateModule(e.file(t, "bad.wasm", "not wasm"), &out), tools.ErrNotWasm)
	assert.ErrorIs(t, TestModule(wasm), ErrRuntimeUnavailable)
}
