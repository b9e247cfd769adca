package rowconv

import "github.com/satishbabariya/nlsql/internal/config"

// postgresConverter is keyed on lib/pq type names.
//
// NUMERIC is truncated to an integer, dropping the fractional digits. This
// is a known precision loss; MySQL DECIMAL, by contrast, stays exact text.
// A NUMERIC whose whole part does not fit in int64 fails the row.
var postgresConverter = func() *Converter {
	m := map[string]rule{}
	register(m, intRule, "INT2", "INT4", "INT8")
	register(m, truncatedNumericRule, "NUMERIC")
	register(m, floatRule, "FLOAT4", "FLOAT8")
	register(m, stringRule, "VARCHAR", "TEXT", "CHAR", "BPCHAR", "NAME", "UUID")
	register(m, boolRule, "BOOL")
	register(m, timeRule("2006-01-02"), "DATE")
	register(m, timeRule("2006-01-02 15:04:05.999999"), "TIMESTAMP")
	register(m, timeRule("2006-01-02 15:04:05.999999-07:00"), "TIMESTAMPTZ")
	register(m, timeRule("15:04:05.999999"), "TIME")
	register(m, timeRule("15:04:05.999999-07:00"), "TIMETZ")
	register(m, jsonRule, "JSON", "JSONB")
	register(m, base64Rule, "BYTEA")
	register(m, stringArrayRule, "_TEXT", "_VARCHAR", "_BPCHAR", "_NAME")
	return &Converter{dialect: config.PostgreSQL, rules: m}
}()
