// Package memory exposes per-user long-term memory to the agent.
//
// The Adapter contract:
//   - Search and Save never return Go errors; every outcome is a Response
//     whose Status is one of success, no_memories or error.
//   - Connected forwards to a Store (the hosted memory service) and converts
//     store faults into error responses.
//   - Disabled is selected once at startup when the store client could not be
//     built; it answers every call with "Memory client not initialized.".
//
// The package also keeps a text-only chat transcript per user (role + text).
// Tool blocks are transient and not persisted.
package memory
