// Package sim ties agents, forecast constraints, and the discrete-event
// kernel into a runnable simulation. An Environment owns the registry of
// agents and objects, the optional state series that gates their work, the
// append-ordered log, and the task-lock that keeps each agent down to one
// task sequence at a time.
//
// The model is cooperative and single threaded: one process step executes at
// a time, interleaved by the kernel's event queue, so nothing in this package
// needs locking beyond the task-lock set itself.
package sim
