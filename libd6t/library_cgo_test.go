//go:build cgo

package libd6t

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/d6t"
)

// fakeLibrary is the path of testdata/fake_d6t.c built as a shared object,
// empty when no C compiler is available.
var fakeLibrary string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "libd6t")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}
	out := filepath.Join(dir, "libfaked6t.so")
	build := exec.Command(cc, "-shared", "-fPIC", "-o", out, filepath.Join("testdata", "fake_d6t.c"))
	if msg, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "could not build fake libd6t: %v\n%s", err, msg)
	} else {
		fakeLibrary = out
	}
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func loadFake(t *testing.T, opts ...Option) *Library {
	t.Helper()
	if fakeLibrary == "" {
		t.Skip("no C compiler to build the fake library")
	}
	lib, err := Load(fakeLibrary, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, lib.Unload()) })
	return lib
}

func TestNativeLayoutMatchesHandle(t *testing.T) {
	assert.Equal(t, NativeLayout(), d6t.HandleLayout())
}

func TestLoad_MissingLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libd6t.so")
	lib, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, lib)
	assert.Contains(t, err.Error(), "libd6t: could not load "+path)
}

func TestLibrary_Unloaded(t *testing.T) {
	lib := &Library{}
	var h d6t.Handle
	ctx := context.Background()
	assert.ErrorIs(t, lib.Open(ctx, &h, d6t.D6T44L06, ""), ErrLibraryClosed)
	assert.ErrorIs(t, lib.Read(ctx, &h), ErrLibraryClosed)
	lib.Close(ctx, &h)
	assert.NoError(t, lib.Unload())
}

func TestLibrary_Device(t *testing.T) {
	lib := loadFake(t)
	ctx := context.Background()
	dev := d6t.NewDevice(lib, d6t.D6T1A01, d6t.WithPath("/dev/i2c-1"), d6t.WithLogger(slog.Default()))

	require.NoError(t, dev.Open(ctx))
	assert.Equal(t, int32(42), dev.Handle().Fd)
	assert.Equal(t, uint8(5), dev.Handle().BufSize)

	readings, err := dev.ReadTemperatures(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{25.0, 18.0, 0x4A}, readings)

	require.NoError(t, dev.Close(ctx))
	assert.Nil(t, dev.Handle().RdBuf)
	assert.Equal(t, int32(-1), dev.Handle().Fd)
}

func TestLibrary_HandleInsideGoStruct(t *testing.T) {
	lib := loadFake(t)
	ctx := context.Background()
	// the handle shares its allocation with Go pointers
	holder := struct {
		logger *slog.Logger
		handle d6t.Handle
	}{logger: slog.Default()}

	require.NoError(t, lib.Open(ctx, &holder.handle, d6t.D6T1A01, ""))
	require.NoError(t, lib.Read(ctx, &holder.handle))
	assert.Equal(t, []float64{25.0, 18.0, 0x4A}, d6t.Decode(holder.handle.Buffer()))
	lib.Close(ctx, &holder.handle)
	assert.Nil(t, holder.handle.Buffer())
}

func TestLibrary_OpenStatus(t *testing.T) {
	lib := loadFake(t)
	dev := d6t.NewDevice(lib, d6t.D6T8L09)

	err := dev.Open(context.Background())
	require.Error(t, err)
	var opErr *d6t.OpError
	require.True(t, errors.As(err, &opErr))
	status, ok := d6t.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, d6t.StatusFailure, status)
	assert.Equal(t, d6t.Handle{}, *dev.Handle())
}

func TestLibrary_ReadStatus(t *testing.T) {
	lib := loadFake(t)
	ctx := context.Background()
	dev := d6t.NewDevice(lib, d6t.D6T1A02)
	require.NoError(t, dev.Open(ctx))
	defer func() { assert.NoError(t, dev.Close(ctx)) }()

	_, err := dev.ReadTemperatures(ctx)
	status, ok := d6t.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, d6t.Status(5), status)

	readings, err := dev.Readings()
	assert.Nil(t, readings)
	assert.Error(t, err)
}

func TestLibrary_VoidRead(t *testing.T) {
	lib := loadFake(t, WithVoidRead())
	ctx := context.Background()
	dev := d6t.NewDevice(lib, d6t.D6T1A02)
	require.NoError(t, dev.Open(ctx))
	defer func() { assert.NoError(t, dev.Close(ctx)) }()

	// the status of the read is discarded
	readings, err := dev.ReadTemperatures(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{25.0, 18.0, 0x4A}, readings)
}

func TestLibrary_CallsAfterUnload(t *testing.T) {
	if fakeLibrary == "" {
		t.Skip("no C compiler to build the fake library")
	}
	lib, err := Load(fakeLibrary)
	require.NoError(t, err)
	require.NoError(t, lib.Unload())
	assert.NoError(t, lib.Unload())

	var h d6t.Handle
	assert.ErrorIs(t, lib.Open(context.Background(), &h, d6t.D6T1A01, ""), ErrLibraryClosed)
}
