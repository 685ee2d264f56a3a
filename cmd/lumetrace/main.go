// Command lumetrace renders a scene from the command line, spec.md §6's
// CLI boundary: a scene name/path plus the RendererInfo fields exposed
// as flags, producing a tone-mapped image and reporting RenderStats.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/lumetrace/lumetrace/internal/logging"
	"github.com/lumetrace/lumetrace/internal/renderer"
)

// Exit codes, spec.md §6.
const (
	exitSuccess      = 0
	exitArgumentErr  = 1
	exitSceneLoadErr = 2
	exitInternalErr  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	app := kingpin.New("lumetrace", "Progressive spectral path tracer")
	sceneName := app.Arg("scene", "Built-in scene name (see --list-scenes)").Default("cornell").String()
	width := app.Flag("width", "Image width in pixels").Default("400").Int()
	height := app.Flag("height", "Image height in pixels").Default("400").Int()
	spp := app.Flag("spp", "Samples per pixel").Default("64").Int()
	out := app.Flag("out", "Output file path (binary PPM)").Default("render.ppm").String()
	threads := app.Flag("threads", "Worker count, 0 = auto").Default("0").Int()
	integratorName := app.Flag("integrator", "path|vol_path|light_path|bdpt|vol_bdpt|sppm|naive_path|random_walk|ao|albedo|debug").Default("path").String()
	maxBounces := app.Flag("max-bounces", "Maximum path depth").Default("16").Int()
	aoRange := app.Flag("ao-range", "AO integrator occlusion range").Default("0.1").Float64()
	nPhotons := app.Flag("photons", "Photons per iteration (light_path/bdpt/sppm)").Default("100000").Int()
	verbose := app.Flag("verbose", "Enable debug logging").Bool()
	listScenes := app.Flag("list-scenes", "Print built-in scene names and exit").Bool()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "lumetrace:", err)
		return exitArgumentErr
	}

	if *listScenes {
		for _, name := range sceneNames() {
			fmt.Println(name)
		}
		return exitSuccess
	}

	var logger logging.Logger
	var err error
	if *verbose {
		logger, err = logging.NewDevelopment()
	} else {
		logger, err = logging.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "lumetrace: failed to initialize logger:", err)
		return exitInternalErr
	}

	ii, err := parseIntegratorKind(*integratorName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lumetrace:", err)
		return exitArgumentErr
	}

	sc, f, samp, err := buildScene(*sceneName, *width, *height, *spp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lumetrace: failed to load scene:", err)
		return exitSceneLoadErr
	}

	info := renderer.RendererInfo{
		Scene:      sc,
		Film:       f,
		Sampler:    samp,
		NumWorkers: *threads,
		Integrator: renderer.IntegratorInfo{
			Type:          ii,
			MaxBounces:    *maxBounces,
			RRMinBounces:  1,
			AORange:       *aoRange,
			NPhotons:      *nPhotons,
			InitialRadius: -1,
		},
	}

	r, err := renderer.New(info, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lumetrace: invalid configuration:", err)
		return exitArgumentErr
	}

	stats, err := r.Render(context.Background())
	if err != nil {
		logger.Errorf("render failed: %v", err)
		if writeErr := f.WritePPM(*out, *spp); writeErr != nil {
			fmt.Fprintln(os.Stderr, "lumetrace: failed to write partial output:", writeErr)
		}
		return exitInternalErr
	}

	if err := f.WritePPM(*out, *spp); err != nil {
		fmt.Fprintln(os.Stderr, "lumetrace: failed to write output:", err)
		return exitInternalErr
	}

	fmt.Printf("wrote %s (%dx%d, avg %.1f samples/px, %d saturated)\n",
		*out, *width, *height, stats.AverageSamples, stats.SaturatedCount)
	return exitSuccess
}

func parseIntegratorKind(name string) (renderer.IntegratorKind, error) {
	switch name {
	case "path":
		return renderer.Path, nil
	case "vol_path":
		return renderer.VolPath, nil
	case "light_path":
		return renderer.LightPath, nil
	case "light_vol_path":
		return renderer.LightVolPath, nil
	case "bdpt":
		return renderer.BDPT, nil
	case "vol_bdpt":
		return renderer.VolBDPT, nil
	case "sppm":
		return renderer.SPPM, nil
	case "naive_path":
		return renderer.NaivePath, nil
	case "naive_vol_path":
		return renderer.NaiveVolPath, nil
	case "random_walk":
		return renderer.RandomWalk, nil
	case "ao":
		return renderer.AO, nil
	case "albedo":
		return renderer.Albedo, nil
	case "debug":
		return renderer.Debug, nil
	default:
		return 0, fmt.Errorf("unknown integrator %q", name)
	}
}
