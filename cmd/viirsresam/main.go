// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/pbnjay/memory"
	"gopkg.in/yaml.v3"

	"github.com/mlnoga/viirsresam/internal/config"
	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/ops"
	"github.com/mlnoga/viirsresam/internal/ops/band"
	"github.com/mlnoga/viirsresam/internal/ops/geo"
	"github.com/mlnoga/viirsresam/internal/ops/reorder"
	"github.com/mlnoga/viirsresam/internal/ops/report"
	"github.com/mlnoga/viirsresam/internal/resam"
	"github.com/mlnoga/viirsresam/internal/rest"
)

const version = "0.1.0"

// Exit status on precondition violations and I/O failures
const exitFailure = 2

var totalMiBs=memory.TotalMemory()/1024/1024

var configFile= flag.String("config", "", "load settings from YAML `file`, flags given on the command line take precedence")
var opsFile   = flag.String("ops", "", "run the JSON operator sequence from `file` instead of a command")
var logFile   = flag.String("log", "", "save log output to `file` in addition to stdout")
var verbose   = flag.Bool("V", false, "print effective settings and operator sequence before running")

var sorted    = flag.Bool("sorted", false, "write fields in sorted row order instead of the original scan order")
var extra     = flag.Bool("x", false, "also write the sorted original field as Reordered<Field>")
var adaptive  = flag.Bool("adaptive", true, "adapt the sort index to pixels outside the deletion zone. sortgeo defaults to false")
var keep      = flag.Bool("keep", false, "pass through unchanged every row whose sort index maps it onto itself")
var resolution= resam.ResolutionGeodesic
var threads   = flag.Int("threads", 0, "number of worker threads, 0=all logical cores")
var debugDir  = flag.String("debug", "", "dump intermediate grids as FITS into `dir`")

var tiff      = flag.Bool("tiff", false, "write 16-bit grayscale TIFF previews")
var jpg       = flag.Bool("jpg", false, "write false color JPEG previews")
var previews  = flag.String("previews", ".", "write previews into `dir`")
var field     = flag.String("field", "", "field for stats and previews, default is the band field")
var csvFile   = flag.String("csv", "", "save statistics as CSV to `file`")

var chroot    = flag.String("chroot", "", "chroot the REST server into `dir` before serving")
var setuid    = flag.Int("setuid", -1, "switch the REST server to user `id` before serving, -1=keep")
var port      = flag.Int("port", 8080, "port of the REST server")

func init() {
	flag.TextVar(&resolution, "res", resam.ResolutionGeodesic, "Gaussian bandwidth `mode`, geodesic or quadratic")
}

func main() {
	debug.SetGCPercent(20)
	start:=time.Now()
	flag.Usage=func(){
 	    fmt.Fprintf(ops.LogWriter, `Viirsresam Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (band|tcgeo|sortgeo|reorder|stats|serve|config|legal|version) (args)

Commands:
  band GEO BAND...     Resample bow-tie deletion zones of band granules BAND with geolocation GEO
  tcgeo GMODO GMTCO    Resample terrain-corrected geolocation GMTCO using ellipsoid geolocation GMODO
  sortgeo GMODO...     Sort geolocation into monotonic row order
  reorder FILE...      Sort all fields of ACSPO or L2P_GHRSST granules into monotonic row order
  stats DIR...         Show field statistics
  serve                Serve the REST API
  config FILE          Save effective settings as YAML
  legal                Show license and attribution information
  version              Show version information

Flags:
`, os.Args[0])
	    flag.PrintDefaults()
	}
	flag.Parse()

	if *logFile!="" {
		err:=ops.LogAlsoToFile(*logFile)
		if err!=nil { ops.LogFatalf(exitFailure, "Unable to open logfile '%s': %s\n", *logFile, err) }
	}
	defer ops.LogSync()

	cfg:=config.Default()
	if *configFile!="" {
		var err error
		cfg, err=config.Load(*configFile)
		if err!=nil { ops.LogFatalf(exitFailure, "%s\n", err) }
	}
	set:=explicitFlags()
	applyFlags(cfg, set)
	if err:=cfg.Validate(); err!=nil { ops.LogFatalf(exitFailure, "Invalid settings: %s\n", err) }

	args:=flag.Args()
	if *opsFile!="" {
		seq, err:=loadSequence(*opsFile)
		if err!=nil { ops.LogFatalf(exitFailure, "%s\n", err) }
		run(seq, cfg)
	} else {
		if len(args)<1 {
			flag.Usage()
			return
		}
		switch args[0] {
		case "serve":
			if err:=rest.MakeSandbox(cfg.Server.Chroot, cfg.Server.Setuid, ops.LogWriter); err!=nil {
				ops.LogFatalf(exitFailure, "%s\n", err)
			}
			if err:=rest.Serve(cfg); err!=nil { ops.LogFatalf(exitFailure, "%s\n", err) }
			return

		case "config":
			if len(args)!=2 { ops.LogFatalf(exitFailure, "Usage: %s config FILE\n", os.Args[0]) }
			if err:=config.Save(cfg, args[1]); err!=nil { ops.LogFatalf(exitFailure, "%s\n", err) }
			ops.LogPrintf("Saved settings to %s\n", args[1])
			return

		case "legal":
			fmt.Fprint(ops.LogWriter, legal)
			return

		case "version":
			ops.LogPrintf("Version %s\n", version)
			return

		case "help", "?":
			flag.Usage()
			return
		}

		seq, err:=commandSequence(args, cfg, set)
		if err!=nil {
			ops.LogPrintf("%s\n", err)
			flag.Usage()
			ops.LogFatalf(exitFailure, "")
		}
		run(seq, cfg)
	}

	ops.LogPrintf("Done after %v\n", time.Since(start))
}

// Returns the names of flags given on the command line
func explicitFlags() map[string]bool {
	set:=map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name]=true })
	return set
}

// Overrides settings with the flags given on the command line
func applyFlags(cfg *config.Config, set map[string]bool) {
	r:=&cfg.Resampling
	if set["sorted"]   { r.Sorted=*sorted }
	if set["x"]        { r.Extra=*extra }
	if set["adaptive"] { r.Adaptive=*adaptive }
	if set["keep"]     { r.KeepInOrder=*keep }
	if set["res"]      { r.Resolution=resolution }
	if set["threads"]  { r.Workers=*threads }
	if set["debug"]    { r.DebugDir=*debugDir }
	if set["tiff"]     { cfg.Preview.TIFF=*tiff }
	if set["jpg"]      { cfg.Preview.JPG=*jpg }
	if set["chroot"]   { cfg.Server.Chroot=*chroot }
	if set["setuid"]   { cfg.Server.Setuid=*setuid }
	if set["port"]     { cfg.Server.Port=*port }
}

// Builds the operator sequence for a command line
func commandSequence(args []string, cfg *config.Config, set map[string]bool) (*ops.OpSequence, error) {
	preview:=report.NewOpPreview(*field, *previews, cfg.Preview.TIFF, cfg.Preview.JPG)
	switch args[0] {
	case "band":
		if len(args)<3 { return nil, fmt.Errorf("band needs a geolocation granule and at least one band granule") }
		return ops.NewOpSequence(
			ops.NewOpLoadMany(args[2:]),
			band.NewOpResampleBand(cfg.Resampling, args[1]),
			preview,
		), nil

	case "tcgeo":
		if len(args)!=3 { return nil, fmt.Errorf("tcgeo needs a GMODO and a GMTCO granule") }
		return ops.NewOpSequence(
			ops.NewOpLoad(0, args[2]),
			geo.NewOpTerrainGeo(cfg.Resampling, args[1]),
		), nil

	case "sortgeo":
		if len(args)<2 { return nil, fmt.Errorf("sortgeo needs at least one GMODO granule") }
		return ops.NewOpSequence(
			ops.NewOpLoadMany(args[1:]),
			geo.NewOpSortGeo(set["adaptive"] && cfg.Resampling.Adaptive),
		), nil

	case "reorder":
		if len(args)<2 { return nil, fmt.Errorf("reorder needs at least one granule") }
		return ops.NewOpSequence(
			ops.NewOpLoadMany(args[1:]),
			reorder.NewOpReorder(nil),
		), nil

	case "stats":
		if len(args)<2 { return nil, fmt.Errorf("stats needs at least one granule") }
		return ops.NewOpSequence(
			ops.NewOpLoadMany(args[1:]),
			report.NewOpStats(*field, *csvFile),
			preview,
		), nil
	}
	return nil, fmt.Errorf("Unknown command '%s'", args[0])
}

// Loads a JSON operator sequence from file
func loadSequence(fileName string) (*ops.OpSequence, error) {
	data, err:=os.ReadFile(fileName)
	if err!=nil { return nil, fmt.Errorf("Error reading operator sequence: %w", err) }
	var seq ops.OpSequence
	if err=json.Unmarshal(data, &seq); err!=nil {
		return nil, fmt.Errorf("Error parsing operator sequence %s: %w", fileName, err)
	}
	return &seq, nil
}

// Runs the sequence with the given settings, exiting on failure
func run(seq *ops.OpSequence, cfg *config.Config) {
	c:=ops.NewContext(ops.LogWriter, cfg)
	if *verbose {
		ops.LogPrintf("Running on %s\n", grid.CPUDescription())
		ops.LogPrintf("Using %d threads, %d concurrent granules, %d MiB of %d MiB physical memory\n",
			c.MaxThreads, c.MaxGranules, c.MemoryMB, totalMiBs)
		if bs, err:=yaml.Marshal(cfg); err==nil { ops.LogPrintf("Settings:\n%s", bs) }
		if bs, err:=json.MarshalIndent(seq, "", "  "); err==nil { ops.LogPrintf("Operators:\n%s\n", bs) }
	}
	if err:=seq.Run(c); err!=nil { ops.LogFatalf(exitFailure, "Error: %s\n", err) }
}
