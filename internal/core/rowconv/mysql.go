package rowconv

import "github.com/satishbabariya/nlsql/internal/config"

// mysqlConverter is keyed on go-sql-driver/mysql type names. The text
// protocol delivers every value as bytes, which the rules parse.
var mysqlConverter = func() *Converter {
	m := map[string]rule{}
	register(m, intRule,
		"INT", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT", "YEAR",
	)
	register(m, uintRule,
		"UNSIGNED INT", "UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED BIGINT",
	)
	register(m, floatRule, "FLOAT", "DOUBLE")
	register(m, exactDecimalRule, "DECIMAL")
	register(m, stringRule, "VARCHAR", "CHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "ENUM", "SET")
	register(m, boolRule, "BOOL", "BOOLEAN")
	register(m, timeRule("2006-01-02"), "DATE")
	register(m, timeRule("2006-01-02 15:04:05.999999"), "DATETIME", "TIMESTAMP")
	register(m, stringRule, "TIME")
	register(m, jsonRule, "JSON")
	register(m, base64Rule, "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY")
	return &Converter{dialect: config.MySQL, rules: m}
}()
