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


// Package rest exposes granule operations over HTTP, streaming the log as plain text.
package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/viirsresam/internal/config"
	"github.com/mlnoga/viirsresam/internal/ops"
	"github.com/mlnoga/viirsresam/internal/ops/band"
	_ "github.com/mlnoga/viirsresam/internal/ops/geo"      // registers operators for JSON decoding
	_ "github.com/mlnoga/viirsresam/internal/ops/reorder"
	"github.com/mlnoga/viirsresam/internal/ops/report"
)


// Listens and serves on the configured port until failure
func Serve(cfg *config.Config) error {
	r := NewRouter(cfg, gin.Default())
	return r.Run(fmt.Sprintf(":%d", cfg.Server.Port))
}

// Registers the API routes on the given engine
func NewRouter(cfg *config.Config, r *gin.Engine) *gin.Engine {
	s:=&server{cfg: cfg}
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping",     getPing)
			v1.POST("/resample", s.postResample)
			v1.POST("/stats",    s.postStats)
			v1.POST("/ops",      s.postOps)
		}
	}
	return r
}

type server struct {
	cfg *config.Config
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m,err:=json.MarshalIndent(args, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

// Serializes concurrent log writes from parallel granules, flushing each to the client
type streamWriter struct {
	mutex sync.Mutex
	w     gin.ResponseWriter
}

func (s *streamWriter) Write(p []byte) (n int, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	n, err=s.w.Write(p)
	s.w.Flush()
	return n, err
}

// Binds the arguments, starts a plain text response and echoes the arguments. 
// Returns nil if the request was rejected
func (s *server) begin(c *gin.Context, args interface{}) *ops.Context {
	if err:=c.ShouldBindJSON(args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return nil
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/plain")
	c.Writer.WriteHeader(http.StatusOK)
	logWriter:=&streamWriter{w: c.Writer}

	if err:=printArgs(logWriter, "Arguments:\n", "\n", args); err!=nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return nil
	}
	ctx:=ops.NewContext(logWriter, s.cfg)
	ctx.RestrictPaths=true
	return ctx
}

// Runs the sequence, reporting errors into the log
func run(ctx *ops.Context, seq *ops.OpSequence) {
	if err:=seq.Run(ctx); err!=nil {
		fmt.Fprintf(ctx.Log, "error: %s\n", err.Error())
		return
	}
	fmt.Fprintf(ctx.Log, "Done.\n")
}


type postResampleArgs struct {
	Geo    string   `json:"geo"   binding:"required"`
	Bands  []string `json:"bands" binding:"required"`
	Sorted bool     `json:"sorted"`
	Extra  bool     `json:"extra"`
}

func (s *server) postResample(c *gin.Context) {
	var args postResampleArgs
	ctx:=s.begin(c, &args)
	if ctx==nil { return }

	r:=s.cfg.Resampling
	r.Sorted, r.Extra=args.Sorted, args.Extra
	r.DebugDir=""
	run(ctx, ops.NewOpSequence(ops.NewOpLoadMany(args.Bands), band.NewOpResampleBand(r, args.Geo)))
}


type postStatsArgs struct {
	Dirs  []string `json:"dirs"  binding:"required"`
	Field string   `json:"field"`
}

func (s *server) postStats(c *gin.Context)  {
	var args postStatsArgs
	ctx:=s.begin(c, &args)
	if ctx==nil { return }
	run(ctx, ops.NewOpSequence(ops.NewOpLoadMany(args.Dirs), report.NewOpStats(args.Field, "")))
}


func (s *server) postOps(c *gin.Context) {
	var seq ops.OpSequence
	ctx:=s.begin(c, &seq)
	if ctx==nil { return }
	run(ctx, &seq)
}
