// Package bus defines the shared control bus of the Kosmo rig as seen from the master:
// the transaction-level Transport contract, slave addresses, end-status codes,
// the ASCII command vocabulary and the chunk framing used for register blocks
// larger than one bus transaction.
//
// # Transactions
//
// The bus is half-duplex with a single master and a hard cap of TxCap bytes per
// transaction. A write transaction is BeginTransmission, one or more Write calls
// and EndTransmission, which returns the end status (StatusOK on success). A
// read transaction is RequestFrom followed by ReadByte while Available is
// non-zero.
//
// # Chunk framing
//
// Slave-to-master register reads are framed: every chunk starts with one status
// byte followed by up to ChunkDataCap data bytes.
//
//   - 0x00          the slave has no data; the whole transfer is aborted
//   - 0x80 bit set  more chunks follow
//   - otherwise     final chunk
//
// Master-to-slave writes are not framed: the block is pushed in WriteChunkCap
// sized pieces, each in its own transaction.
package bus
