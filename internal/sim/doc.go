/*
Package sim builds a runnable simulator from an elaborated model and exposes
the harness used by tests, the CLI, and the remote server.

Construction runs in a fixed order:

 1. refuse models that are not elaborated or already simulated;
 2. run every module's verify hooks (foreign model port contracts);
 3. collect signals, build nets, and install value nodes (internal/netlist);
 4. bind assignment bodies to their modules and resolve the sensitivity of
    every combinational behaviour (internal/sensitivity);
 5. optionally look for combinational loops (internal/dag);
 6. build the scheduler and attach it to every node.

The network is primed by the first Reset, Eval, or Cycle. A model whose
top module has a 1-bit input named "reset" gets it held high for two
cycles by Reset.
*/
package sim
