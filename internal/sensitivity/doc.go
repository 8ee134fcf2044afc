/*
Package sensitivity decides which value nodes each combinational behaviour
depends on, by reading its body instead of running it.

Every variable traversal in a body is resolved against the owning module's
slot table after installation:

	a            scalar signal          -> the node bound to a
	regs         signal array           -> every element's node
	regs[2]      literal index          -> that element's node
	regs[sel]    computed index         -> every element of regs (plus sel)
	u0.out       submodule signal       -> resolved inside u0
	param.width  module parameter       -> static, no node

Anything else is reported as unresolved with a reason and logged; the
behaviour is still scheduled, but will not re-run when that name changes.
*/
package sensitivity
