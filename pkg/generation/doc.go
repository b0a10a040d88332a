// Package generation turns a completed draft into an AgentConfiguration.
//
// The Sequencer walks an ordered list of timed phases, reporting progress
// after each one, and hands the draft to an Assembler once the last phase
// has finished. Delays go through a Sleeper so tests can run without waiting.
package generation
