package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all top-level blocks of a file.
type fileRoot struct {
	Modules []*moduleBlock `hcl:"module,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

type moduleBlock struct {
	Name          string           `hcl:"name,label"`
	Params        hcl.Expression   `hcl:"params,optional"`
	Inputs        []*signalBlock   `hcl:"input,block"`
	Outputs       []*signalBlock   `hcl:"output,block"`
	Wires         []*signalBlock   `hcl:"wire,block"`
	Instances     []*instanceBlock `hcl:"instance,block"`
	Connects      []*connectBlock  `hcl:"connect,block"`
	Combinational []*behaviorBlock `hcl:"combinational,block"`
	Sequential    []*behaviorBlock `hcl:"sequential,block"`
	DeclRange     hcl.Range        `hcl:",def_range"`
}

type signalBlock struct {
	Name      string         `hcl:"name,label"`
	Width     hcl.Expression `hcl:"width"`
	Count     hcl.Expression `hcl:"count,optional"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

type instanceBlock struct {
	Name      string         `hcl:"name,label"`
	Module    string         `hcl:"module"`
	Params    hcl.Expression `hcl:"params,optional"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

type connectBlock struct {
	From      hcl.Expression `hcl:"from,optional"`
	To        hcl.Expression `hcl:"to"`
	FromSlice hcl.Expression `hcl:"from_slice,optional"`
	ToSlice   hcl.Expression `hcl:"to_slice,optional"`
	Value     hcl.Expression `hcl:"value,optional"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

type behaviorBlock struct {
	Name      string    `hcl:"name,label"`
	Body      hcl.Body  `hcl:",remain"`
	DeclRange hcl.Range `hcl:",def_range"`
}
