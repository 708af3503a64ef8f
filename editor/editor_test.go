package editor

import (
	"bytes"
	"context"
	"errors"
	goimage "image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carbon-X-DAO/AvatarMix/catalog"
	"github.com/Carbon-X-DAO/AvatarMix/compositor"
	"github.com/Carbon-X-DAO/AvatarMix/selection"
)

const size = 6

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

type loaderFunc func(ctx context.Context) (catalog.Catalogs, error)

func (f loaderFunc) Load(ctx context.Context) (catalog.Catalogs, error) { return f(ctx) }

func solid(c color.Color) *goimage.RGBA {
	img := goimage.NewRGBA(goimage.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &goimage.Uniform{c}, goimage.Point{}, draw.Src)
	return img
}

func corner(c color.RGBA) *goimage.RGBA {
	img := goimage.NewRGBA(goimage.Rect(0, 0, size, size))
	img.SetRGBA(size-1, size-1, c)
	return img
}

// head=[A], eyes=[empty, B], mouth=[empty], detail=[empty]
func fixture() (catalog.Catalogs, *goimage.RGBA, *goimage.RGBA) {
	a := solid(red)
	b := corner(blue)
	cats := catalog.NewCatalogs([catalog.NumSlices][]catalog.Entry{
		catalog.Head:   {catalog.Present(&catalog.Resource{Locator: "head/a.png", Image: a})},
		catalog.Eyes:   {catalog.EmptyEntry(), catalog.Present(&catalog.Resource{Locator: "eyes/b.png", Image: b})},
		catalog.Mouth:  {catalog.EmptyEntry()},
		catalog.Detail: {catalog.EmptyEntry()},
	})
	return cats, a, b
}

func started(t *testing.T, cats catalog.Catalogs) *Editor {
	t.Helper()
	e := New(loaderFunc(func(context.Context) (catalog.Catalogs, error) { return cats, nil }), Options{Size: size})
	e.Start(context.Background())
	return e
}

func composite(t *testing.T, e *Editor) *goimage.RGBA {
	t.Helper()
	img, err := e.Composite(context.Background())
	require.NoError(t, err)
	return img
}

func TestEditor_StartDrawsDefaultSelection(t *testing.T) {
	cats, a, _ := fixture()
	e := started(t, cats)

	assert.Equal(t, a.Pix, composite(t, e).Pix)
	assert.Equal(t, compositor.Composed, e.SurfaceState())
	assert.True(t, e.Changed())
	assert.Equal(t, "h0-e0-m0-d0", e.OutfitCode())
	assert.Equal(t, size, e.Size())
}

func TestEditor_EmptySentinelAndStacking(t *testing.T) {
	cats, a, b := fixture()
	e := started(t, cats)

	e.Select(catalog.Eyes, 0)
	assert.Equal(t, a.Pix, composite(t, e).Pix)

	e.Select(catalog.Eyes, 1)
	want := goimage.NewRGBA(a.Bounds())
	draw.Draw(want, want.Bounds(), a, goimage.Point{}, draw.Src)
	draw.Draw(want, want.Bounds(), b, goimage.Point{}, draw.Over)
	assert.Equal(t, want.Pix, composite(t, e).Pix)

	r, ok := e.SelectedResource(catalog.Eyes)
	require.True(t, ok)
	assert.Equal(t, "eyes/b.png", r.Locator)
}

func TestEditor_OutOfRangeKeepsLastComposite(t *testing.T) {
	cats, _, _ := fixture()
	e := started(t, cats)
	e.Select(catalog.Eyes, 1)
	before := composite(t, e)

	e.Select(catalog.Eyes, cats.Len(catalog.Eyes))

	assert.Equal(t, before.Pix, composite(t, e).Pix)
	assert.Equal(t, 2, e.Current().Index(catalog.Eyes))

	// a valid pick recovers
	e.Select(catalog.Eyes, 0)
	assert.Equal(t, solid(red).Pix, composite(t, e).Pix)
}

func TestEditor_RapidSelectsEndOnLatest(t *testing.T) {
	cats, a, _ := fixture()
	e := started(t, cats)
	require.NoError(t, e.comp.Wait(context.Background()))

	release := make(chan struct{})
	var firstVersion uint64
	e.resolve = func(ctx context.Context, c catalog.Catalogs, snap selection.Snapshot) (compositor.Layers, error) {
		if snap.Version == firstVersion {
			<-release
		}
		return Resolve(ctx, c, snap)
	}

	firstVersion = e.Current().Version + 1
	e.Select(catalog.Eyes, 1)
	e.Select(catalog.Eyes, 0)

	assert.Equal(t, a.Pix, composite(t, e).Pix)

	close(release)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, a.Pix, composite(t, e).Pix)
}

func TestEditor_RandomizeAllStaysInBounds(t *testing.T) {
	cats, _, _ := fixture()
	e := started(t, cats)

	for i := 0; i < 50; i++ {
		e.RandomizeAll()
		snap := e.Current()
		for _, s := range catalog.Slices() {
			require.GreaterOrEqual(t, snap.Index(s), 0)
			require.Less(t, snap.Index(s), cats.Len(s))
		}
		_, err := e.Composite(context.Background())
		require.NoError(t, err)
	}
}

func TestEditor_LoadFailureRunsEmpty(t *testing.T) {
	e := New(loaderFunc(func(context.Context) (catalog.Catalogs, error) {
		return catalog.Catalogs{}, errors.New("disk on fire")
	}), Options{Size: size})
	e.Start(context.Background())

	assert.Equal(t, catalog.EmptyCatalogs().Lengths(), e.Catalogs().Lengths())
	e.RandomizeAll()
	assert.Equal(t, make([]byte, size*size*4), composite(t, e).Pix)
}

func TestEditor_LoadTimeout(t *testing.T) {
	e := New(loaderFunc(func(ctx context.Context) (catalog.Catalogs, error) {
		<-ctx.Done()
		return catalog.Catalogs{}, ctx.Err()
	}), Options{Size: size, LoadTimeout: 10 * time.Millisecond})

	e.Start(context.Background())
	_ = composite(t, e)
	assert.Equal(t, compositor.Composed, e.SurfaceState())
}

func TestEditor_Export(t *testing.T) {
	cats, _, _ := fixture()
	e := started(t, cats)
	e.Select(catalog.Eyes, 1)

	data, err := e.Export(context.Background())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, blue, color.RGBAModel.Convert(img.At(size-1, size-1)))
	assert.Equal(t, red, color.RGBAModel.Convert(img.At(0, 0)))
}

func TestResolve(t *testing.T) {
	cats, a, b := fixture()

	layers, err := Resolve(context.Background(), cats, selection.Snapshot{Indices: [catalog.NumSlices]int{0, 1, 0, 0}})
	require.NoError(t, err)
	assert.Same(t, a, layers[catalog.Head])
	assert.Same(t, b, layers[catalog.Eyes])
	assert.Nil(t, layers[catalog.Mouth])

	_, err = Resolve(context.Background(), cats, selection.Snapshot{Indices: [catalog.NumSlices]int{1, 0, 0, 0}})
	assert.ErrorIs(t, err, ErrOutOfRange)

	// an unloaded slice at index 0 draws nothing
	layers, err = Resolve(context.Background(), catalog.Catalogs{}, selection.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, compositor.Layers{}, layers)
}
