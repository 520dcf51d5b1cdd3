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


package ops

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pbnjay/memory"

	"github.com/mlnoga/viirsresam/internal/config"
	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/grid"
)

// Approximate working set of resampling one granule field, in MB
const granuleMB = 256

// An execution context for operators
type Context struct {
	Log           io.Writer
	Config       *config.Config
	MemoryMB      int          // memory.TotalMemory()/1024/1024
	MaxThreads    int          `json:"maxThreads"`   // concurrent column batches within a field
	MaxGranules   int          `json:"maxGranules"`  // concurrent granules
	RestrictPaths bool         // only allow relative paths inside the working tree
}

func NewContext(log io.Writer, cfg *config.Config) *Context {
	if cfg==nil { cfg=config.Default() }
	memoryMB:=int(memory.TotalMemory()/1024/1024)
	maxThreads:=cfg.Resampling.Workers
	if maxThreads<1 { maxThreads=grid.DefaultWorkers() }
	maxGranules:=memoryMB*7/10/granuleMB
	if maxGranules>maxThreads { maxGranules=maxThreads }
	if maxGranules<1 { maxGranules=1 }
	return &Context{
		Log         : log,
		Config      : cfg,
		MemoryMB    : memoryMB,
		MaxThreads  : maxThreads,
		MaxGranules : maxGranules,
	}
}

// Returns an error if restricted paths are in effect and p leaves the working tree
func (c *Context) CheckPath(p string) error {
	if c.RestrictPaths && !isPathAllowed(p) { 
		return fmt.Errorf("path %s outside current directory tree, aborting", p) 
	}
	return nil
}

// A promise for a granule. Returns the granule after all pending operations, or an error
type Promise func() (g *granule.Granule, err error)

// Materializes all promises with given concurrency limit. Errors of individual
// promises are joined
func MaterializeAll(ins []Promise, maxThreads int, forget bool) (outs []*granule.Granule, err error) {
	if len(ins)==0 { return nil, nil }
	if maxThreads<1 { maxThreads=1 }
	if(!forget) {
		outs    =make([]*granule.Granule, len(ins))
	}
	limiter:=make(chan bool, maxThreads)
	errs   :=make(chan error, len(ins))
	for i, in := range(ins) {
		limiter <- true 
		go func(i int, theIn Promise) {
			defer func() { <-limiter }()
			g, err:=theIn() // materialize the promise
			if err!=nil {
				errs <- err 
				return
			}
			if(!forget) {
				outs[i]=g
			}
			errs <- nil
		}(i, in)
	}
	for i:=0; i<cap(limiter); i++ {  // wait for goroutines to finish
		limiter <- true
	}
	for i:=0; i<len(ins); i++ {  // collect errors
		if e:=<-errs; e!=nil {
			err=errors.Join(err, e)
		}
	}
	return RemoveNils(outs), err
}

// Remove nils from an array of granules, editing the underlying array in place
func RemoveNils(gs []*granule.Granule) ([]*granule.Granule) {
	o:=0
	for i:=0; i<len(gs); i+=1 {
		if gs[i]!=nil {
			gs[o]=gs[i]
			o+=1
		}
	}
	for i:=o; i<len(gs); i++ {
		gs[i]=nil
	}
	return gs[:o]	
}


// A general granule processing operator: takes n promises as inputs, 
// and produces m promises as output or an error
type Operator interface {
	GetType() string
	IsActive() bool
	MakePromises(ins []Promise, c *Context) (outs []Promise, err error)
}

// Base type for operators, including type information for JSON serializing/deserializing
type OpBase struct {
	Type        string `json:"type"`
	Active      bool   `json:"active"`
}

func (op *OpBase) GetType() string { return op.Type }
func (op *OpBase) IsActive() bool { return op.Active }

// Factory method for operators. For JSON serializing/deserializing
type OperatorFactory func() Operator

// Mapping from operator type strings to factory method for the type 
var operatorFactories=map[string]OperatorFactory{}

// Returns the operator factory for a given type string
func GetOperatorFactory(t string) OperatorFactory {
	return operatorFactories[t]
}

// Registers a given type string for a given type of Operator, identified via an exemplar generator
func SetOperatorFactory(f OperatorFactory) {
	op:=f()
	t:=op.GetType()
	if GetOperatorFactory(t)!=nil { panic(fmt.Sprintf("error: re-registering operator key %s\n", t))}
	operatorFactories[t]=f
}


// A unary granule operator: given n promises as inputs, 
// applies itself to each of them individually and returns n output promises or an error
type OperatorUnary interface {
	Operator
	Apply(g *granule.Granule, c *Context) (gOut *granule.Granule, err error)
}

// Abstract base type for unary operators. Uses golang workaround for abstract classes
// from https://golangbyexample.com/go-abstract-class/
type OpUnaryBase struct {
	OpBase
	Apply func(g *granule.Granule, c *Context) (gOut *granule.Granule, err error) `json:"-"`
}

func (op *OpUnaryBase) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins)==0 { return nil, fmt.Errorf("%s operator with %d inputs", op.Type, len(ins)) }
	outs=make([]Promise, len(ins))
	for i,in:=range(ins) {
		outs[i]=op.MakePromise(in, c)
	}
	return outs, nil
}

func (op *OpUnaryBase) MakePromise(in Promise, c *Context) (out Promise) {
	return func() (g *granule.Granule, err error) {
		if g, err=in();          err!=nil { return nil, err } // materialize input promise
		if !op.Active            { return g, nil }
		if g, err=op.Apply(g,c); err!=nil { return nil, err } // apply unary operator
		return g, nil                                         // wrap output in promise
	}
}

// Open a single granule from a directory. Takes zero inputs, produces one output
type OpLoad struct {
	OpBase
	ID 		    int     `json:"id"`
	Dir         string  `json:"dir"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadDefault()}) } // register the operator for JSON decoding

func NewOpLoadDefault() *OpLoad { return NewOpLoad(0, "") }

func NewOpLoad(id int, dir string) *OpLoad {
	return &OpLoad{
		OpBase : OpBase{Type: "load", Active: true},
		ID : id,
		Dir : dir,
	}
}

// Opens the granule. Ignores any inputs
func (op *OpLoad) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins)>0 { return nil, fmt.Errorf("%s operator with non-zero input", op.Type) }
	if err:=c.CheckPath(op.Dir); err!=nil { return nil, err }

	out:=func() (g *granule.Granule, err error) {
		// no inputs to materialize
		return op.Apply(nil, c)
	}
	return []Promise{out}, nil
}

// Returns true if a path is considered safe, i.e. not an absolute path,
// and doesn't contain the ".." characters to change to a parent directory 
func isPathAllowed(p string) bool {
	if filepath.IsAbs(p) { return false }          // relative paths only
    if strings.Contains(p, "..") { return false }  // no going outside the tree
    return true
}

func (op *OpLoad) Apply(g *granule.Granule, c *Context) (result *granule.Granule, err error) {
	g, err=granule.Open(op.Dir, op.ID, c.Log)
	if err!=nil { return nil, err }
	names, err:=g.Fields()
	if err!=nil { return nil, err }

	warning:=""
	if len(names)==0 {
		warning="; WARNING no fields"
	}
	fmt.Fprintf(c.Log, "%d: Opened %s granule %s with %d fields%s\n", 
		        g.ID, granule.FileTypeOf(g.Dir), g.Dir, len(names), warning)
	return g, nil		
}

// Open many granules from a slice of directory patterns with wildcards.
// Takes zero inputs, produces n outputs
type OpLoadMany struct {
	OpBase
	DirPatterns []string `json:"dirPatterns"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadManyDefault()}) } // register the operator for JSON decoding

func NewOpLoadManyDefault() *OpLoadMany { return NewOpLoadMany(nil) }

func NewOpLoadMany(dirPatterns []string) *OpLoadMany {
	return &OpLoadMany{
		OpBase : OpBase{Type: "loadMany", Active: true},
		DirPatterns : dirPatterns,
	}
}

// Turn directory wildcards into list of load operators
func (op *OpLoadMany) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins)>0 { return nil, fmt.Errorf("%s operator with non-zero input", op.Type) }
	for _, pattern := range op.DirPatterns {
		matches, err := filepath.Glob(pattern)
		if err!=nil { return nil, err }
		for _,match:=range(matches) {
			if c.CheckPath(match)!=nil { 
				fmt.Fprintf(c.Log, "Pattern match outside current directory tree, skipping\n")
				continue
			}
			opLoad:=NewOpLoad(len(outs), match)
			promises, err:=opLoad.MakePromises(nil, c)
			if err!=nil { return nil, err }
			if len(promises)!=1 { return nil, fmt.Errorf("%s operator did not return exactly one promise", opLoad.Type) }
			outs=append(outs, promises[0])
		}
	}
	if len(outs)==0 { 
		return nil, fmt.Errorf("%s operator with no granules to load from pattern %v", op.Type, op.DirPatterns)
	}
	fmt.Fprintf(c.Log, "Found %d granules.\n", len(outs))
	return outs, nil
}


// Applies a sequence of operators to a promise. Number of inputs, outputs as per the chained steps 
type OpSequence struct {
	OpBase
	Steps       []Operator        `json:"-"`      // the actual steps
	StepsRaw    []json.RawMessage `json:"steps"`  // helper for unmarshaling
}

func init() { SetOperatorFactory(func() Operator { return NewOpSequenceDefault()}) } // register the operator for JSON decoding

func NewOpSequenceDefault() *OpSequence { return NewOpSequence() }

func NewOpSequence(steps ...Operator) *OpSequence {
	return &OpSequence{
		OpBase : OpBase{Type: "seq", Active: len(steps)>0},
		Steps  : steps,
	}
}

// Unmarshals a sequence of polymorphic operators from JSON. 
// Uses temporary op.StepsRaw inspired by https://alexkappa.medium.com/json-polymorphism-in-go-4cade1e58ed1
func (op *OpSequence) UnmarshalJSON(b []byte) error {
    type alias OpSequence
    err := json.Unmarshal(b, (*alias)(op))
    if err != nil { return err }

    for _, raw := range op.StepsRaw {
    	i, err:=unmarshalOperator(raw)
        if err != nil { return err }
        op.Steps = append(op.Steps, i)
    }
    op.StepsRaw=nil
    return nil
}

// Decodes a single polymorphic operator, dispatching on its type field
func unmarshalOperator(raw []byte) (Operator, error) {
    var step OpBase
    if err:=json.Unmarshal(raw, &step); err!=nil { return nil, err }

    factory:=GetOperatorFactory(step.Type)
    if factory==nil {
        return nil, fmt.Errorf("Unknown operator type '%s' in raw JSON message '%s'", step.Type, string(raw))
    }
    i:=factory()
    if err:=json.Unmarshal(raw, i); err!=nil { return nil, err }
    return i, nil
}

// Appends one or more operators to the existing sequence
func (op *OpSequence) Append(steps ...Operator) {
	op.Steps=append(op.Steps, steps...)
	op.Active=op.Active || len(steps)>0
}

// Marshals a sequence with polymorphic operators to JSON.
// Uses the actual op.Steps with label "steps", and ignores op.StepsRaw
func (op *OpSequence) MarshalJSON() (bs []byte, err error) {
	buf:=bytes.Buffer{}
	buf.WriteString("{\"type\":")
	inner,err:=json.Marshal(op.Type)
	if err!=nil { return nil, err }
	buf.Write(inner)
	fmt.Fprintf(&buf,", \"active\":%v, \"steps\":", op.Active)
	inner,err=json.Marshal(op.Steps)
	if err!=nil { return nil, err }
	buf.Write(inner)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (op *OpSequence) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	return op.applyRecursive(op.Steps, ins, c)
}

func (op *OpSequence) applyRecursive(steps []Operator, ins []Promise, c *Context) (outs []Promise, err error) {
	if len(steps)==0 { return ins, nil }
	ins, err=steps[0].MakePromises(ins, c)
	if err!=nil { return nil, err }
	return op.applyRecursive(steps[1:], ins, c)
}

// Runs the sequence and materializes its outputs, at most c.MaxGranules at a time
func (op *OpSequence) Run(c *Context) error {
	promises, err:=op.MakePromises(nil, c)
	if err!=nil { return err }
	_, err=MaterializeAll(promises, c.MaxGranules, true)
	return err
}


// Applies a single operator to each input. Takes n inputs, produces n outputs
type OpForEach struct {
	OpBase
	Operation    Operator  `json:"operation"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpForEachDefault()}) } // register the operator for JSON decoding

func NewOpForEachDefault() *OpForEach { return NewOpForEach(nil) }

func NewOpForEach(operation Operator) *OpForEach {
	return &OpForEach{
		OpBase : OpBase{Type: "forEach", Active: operation!=nil},
		Operation    : operation, 
	} 
}

// Decodes the embedded polymorphic operation
func (op *OpForEach) UnmarshalJSON(b []byte) error {
	var aux struct {
		OpBase
		Operation json.RawMessage `json:"operation"`
	}
	if err:=json.Unmarshal(b, &aux); err!=nil { return err }
	op.OpBase=aux.OpBase
	if len(aux.Operation)==0 || string(aux.Operation)=="null" { return nil }
	operation, err:=unmarshalOperator(aux.Operation)
	if err!=nil { return err }
	op.Operation=operation
	return nil
}

// Applies the operation to all inputs individually
func (op *OpForEach) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins)==0 { return ins, nil }
	if op.Operation==nil { return nil, fmt.Errorf("%s operator has no operation to apply", op.Type)}
    for _,in:=range(ins) {
    	out, err:=op.Operation.MakePromises([]Promise{in}, c)
    	if err!=nil { return nil, err }
    	if len(out)!=1 { return nil, fmt.Errorf("%s operator needs exactly one promise from embedded operation", op.Type)}
    	outs=append(outs, out[0])
    }
    return outs, nil
}
