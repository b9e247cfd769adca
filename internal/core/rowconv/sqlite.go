package rowconv

import "github.com/satishbabariya/nlsql/internal/config"

// sqliteTimestampLayout is the layout go-sqlite3 writes time.Time values with.
const sqliteTimestampLayout = "2006-01-02 15:04:05.999999999-07:00"

// sqliteConverter is keyed on declared column types. Expression columns have
// no declared type and take their kind from the stored value, as do NUMERIC
// and DECIMAL columns, which SQLite stores with whatever affinity fits.
var sqliteConverter = func() *Converter {
	m := map[string]rule{}
	register(m, intRule, "INTEGER", "INT", "BIGINT", "SMALLINT", "TINYINT")
	register(m, floatRule, "REAL", "FLOAT", "DOUBLE")
	register(m, stringRule, "TEXT", "VARCHAR", "CHAR", "CLOB")
	register(m, boolRule, "BOOLEAN", "BOOL")
	register(m, timeRule("2006-01-02"), "DATE")
	register(m, timeRule(sqliteTimestampLayout), "DATETIME", "TIMESTAMP")
	register(m, base64Rule, "BLOB")
	register(m, dynamicRule(sqliteTimestampLayout), "NUMERIC", "DECIMAL")
	return &Converter{dialect: config.SQLite, rules: m, untyped: dynamicRule(sqliteTimestampLayout)}
}()
