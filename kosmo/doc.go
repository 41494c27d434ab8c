// Package kosmo implements the master side of the Kosmo rig control bus.
//
// The master owns one session per slave module (tempo, drum sequencer and
// sampler). Each poll tick, GetCycle reads the register block of every slave
// whose retry interval has elapsed using the chunked read protocol, and
// commits complete blocks to a RegisterStore that other goroutines may read.
// Failing slaves are retried once per interval; after RetryLimit consecutive
// failures a slave is settled and forced out of programming mode, so a dead
// or misbehaving module never stalls the rig.
//
// Configuration changes flow the other way: EnterProgrammingMode holds the
// slaves, SetCycle pushes a register.Part with chunked writes, and
// ExitProgrammingMode releases them.
//
//	cfg, err := kosmo.NewConfig(kosmo.WithRetryLimit(5))
//	if err != nil {
//		return err
//	}
//	m, err := kosmo.NewMaster(transport, cfg)
//	if err != nil {
//		return err
//	}
//	go m.Run(ctx, 100*time.Millisecond)
//
//	tempo, ok := m.Store().Tempo()
package kosmo
