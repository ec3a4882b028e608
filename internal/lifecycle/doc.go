// Package lifecycle holds the rules for hackathon projects: who may edit or
// lock a project, whether a hacker joins or leaves a team, how judge lists
// are reconciled, and what a valid project looks like.
//
// Everything here is pure. Callers read state from the store, ask for a
// decision, and write the outcome back themselves.
package lifecycle
