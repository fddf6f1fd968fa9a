package directory

// Compile-time check that PostgresDirectory satisfies Directory; the
// query methods themselves need a live players/clans schema to exercise
// and are left to integration testing, not this unit suite.
var _ Directory = (*PostgresDirectory)(nil)
