// Package source provides Identifier Sources for collision runs.
//
//   - Random draws identifiers from crypto/rand, uniformly over the keyspace.
//   - Seeded derives identifiers from murmur3 so runs are reproducible.
//   - File replays a newline-delimited dump of identifiers through a
//     read-only memory map, split across workers.
//   - Exec shells out to an external generator once per batch.
//
// Every type here satisfies collide.Source.
package source
