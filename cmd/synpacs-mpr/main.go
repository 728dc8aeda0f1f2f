// synpacs-mpr pulls (or synthesizes) a CT series, stacks it into a
// volume, and writes window/levelled orthogonal and MIP slices as PNG
// files. It is the command-line face of the MPR core, mostly useful
// for eyeballing reconstruction output without the web viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/prateek-tiwarii/synpacs/internal/dicomgen"
	"github.com/prateek-tiwarii/synpacs/internal/dicomweb"
	"github.com/prateek-tiwarii/synpacs/internal/mpr"
	"github.com/prateek-tiwarii/synpacs/internal/series"
	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	seriesID := flag.String("series", "", "Series ID to fetch from the PACS API")
	token := flag.String("token", "", "Bearer token for the PACS API")
	synthetic := flag.Bool("synthetic", false, "Generate a synthetic CT stack instead of fetching")
	numSlices := flag.Int("num-slices", 32, "Synthetic stack: number of slices")
	size := flag.Int("size", 128, "Synthetic stack: rows and columns")
	outputDir := flag.String("output", "mpr_output", "Output directory")
	windowCenter := flag.Float64("window-center", 0, "Window center override (0 = series default)")
	windowWidth := flag.Float64("window-width", 0, "Window width override (0 = series default)")
	slabHalfSize := flag.Int("mip-slab", 0, "MIP slab half size in slices (0 = plain slices)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("synpacs-mpr %s\n", version)
		return
	}

	if !*synthetic && *seriesID == "" {
		fmt.Fprintln(os.Stderr, "Error: either --series or --synthetic is required")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*seriesID, *token, *synthetic, *numSlices, *size, *outputDir,
		*windowCenter, *windowWidth, *slabHalfSize); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(seriesID, token string, synthetic bool, numSlices, size int, outputDir string,
	windowCenter, windowWidth float64, slabHalfSize int) error {
	ctx := context.Background()

	var instances []series.Instance
	var fetch volume.FetchFunc

	if synthetic {
		stack, err := dicomgen.GenerateStack(dicomgen.StackOptions{
			Cols: size, Rows: size, NumSlices: numSlices, Seed: 1,
		})
		if err != nil {
			return fmt.Errorf("generate synthetic stack: %w", err)
		}
		instances = stack.Instances
		fetch = func(_ context.Context, inst series.Instance) ([]byte, error) {
			return stack.Fetch(inst)
		}
	} else {
		baseURL := os.Getenv("API_BASE_URL")
		if baseURL == "" {
			return fmt.Errorf("API_BASE_URL is not set")
		}
		client := &dicomweb.Client{BaseURL: baseURL}
		if token != "" {
			client.Headers = func(h http.Header) { h.Set("Authorization", "Bearer "+token) }
		}
		var err error
		instances, err = client.FetchSeries(ctx, seriesID)
		if err != nil {
			return fmt.Errorf("fetch series %s: %w", seriesID, err)
		}
		fetch = client.Fetcher(dicomweb.NewByteCache())
	}

	if err := series.ValidateStackability(instances); err != nil {
		return err
	}
	geo := series.SortSlicesByPosition(instances)

	builder := &volume.Builder{Fetch: fetch}
	vol, err := builder.Build(ctx, geo, func(loaded, total int) {
		fmt.Printf("\rLoading slices: %d/%d", loaded, total)
	})
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Volume: %dx%dx%d, spacing (%.2f, %.2f, %.2f) mm, HU range [%d, %d]\n",
		vol.Cols, vol.Rows, vol.Slices,
		vol.Spacing[0], vol.Spacing[1], vol.Spacing[2], vol.MinHU, vol.MaxHU)

	center, width := vol.WindowCenter, vol.WindowWidth
	if windowCenter != 0 {
		center = windowCenter
	}
	if windowWidth > 0 {
		width = windowWidth
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, p := range []mpr.Plane{mpr.Axial, mpr.Coronal, mpr.Sagittal} {
		index := float64(mpr.SliceCount(vol, p)-1) / 2
		var pixels []int16
		name := p.String()
		if slabHalfSize > 0 {
			pixels = mpr.ExtractMIP(vol, p, index, slabHalfSize)
			name = fmt.Sprintf("%s_mip%d", name, slabHalfSize)
		} else {
			pixels = mpr.ExtractSlice(vol, p, index)
		}

		path := filepath.Join(outputDir, name+".png")
		if err := writePNG(path, vol, p, pixels, center, width); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

// writePNG converts HU pixels to grayscale RGBA and scales the result
// so the on-disk image has physically correct aspect even for
// anisotropic voxels.
func writePNG(path string, vol *volume.Volume, p mpr.Plane, pixels []int16, center, width float64) error {
	geo := mpr.PlaneGeometry(vol, p)
	rgba := mpr.ApplyWindowLevel(pixels, geo.Width, geo.Height, center, width)

	img := &image.RGBA{
		Pix:    rgba,
		Stride: geo.Width * 4,
		Rect:   image.Rect(0, 0, geo.Width, geo.Height),
	}

	// Stretch the axis with the coarser pixel spacing so mm are square
	// on screen.
	outW, outH := geo.Width, geo.Height
	ratio := geo.SpacingY / geo.SpacingX
	if ratio > 1 {
		outH = int(math.Round(float64(geo.Height) * ratio))
	} else if ratio < 1 {
		outW = int(math.Round(float64(geo.Width) / ratio))
	}

	out := img
	if outW != geo.Width || outH != geo.Height {
		out = image.NewRGBA(image.Rect(0, 0, outW, outH))
		xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return png.Encode(f, out)
}
