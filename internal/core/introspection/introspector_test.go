package introspection

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/nlsql/internal/adapters/database"
	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
)

func mockSession(t *testing.T, dbType config.DBType) (database.Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s, err := database.FromDB(db, dbType)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mock
}

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		conn    string
		want    string
		wantErr bool
	}{
		{"mysql://root:pw@localhost:3306/shop", "shop", false},
		{"root:pw@tcp(localhost:3306)/shop_2?parseTime=true", "shop_2", false},
		{"mysql://root@localhost/shop-db", "", true},
		{"mysql://root@localhost/", "", true},
		{"mysql://root@localhost/shop;drop", "", true},
		{"no-slash-here", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.conn, func(t *testing.T) {
			got, err := DatabaseName(tt.conn)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMySQLInvalidNameIssuesNoQuery(t *testing.T) {
	s, mock := mockSession(t, config.MySQL)

	_, err := Introspect(context.Background(), s, "mysql://root@localhost/bad-name")
	require.Error(t, err)
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLIntrospect(t *testing.T) {
	s, mock := mockSession(t, config.MySQL)

	mock.ExpectQuery("information_schema.columns").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "CONSTRAINT_TYPE"}).
			AddRow("orders", "id", "int", "PRIMARY KEY").
			AddRow("orders", "note", "text", nil))

	facts, err := Introspect(context.Background(), s, "root:pw@tcp(db:3306)/shop")
	require.NoError(t, err)
	require.Len(t, facts, 2)
	require.NotNil(t, facts[0].ConstraintType)
	assert.Equal(t, "PRIMARY KEY", *facts[0].ConstraintType)
	assert.Nil(t, facts[1].ConstraintType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIntrospect(t *testing.T) {
	s, mock := mockSession(t, config.PostgreSQL)

	mock.ExpectQuery("table_schema = 'public'").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type", "constraint_type"}).
			AddRow("students", "id", "integer", "PRIMARY KEY").
			AddRow("students", "name", "character varying", nil).
			AddRow("enrollments", "student_id", "integer", "FOREIGN KEY"))

	facts, err := Introspect(context.Background(), s, "postgres://localhost/school")
	require.NoError(t, err)
	require.Len(t, facts, 3)
	assert.Equal(t, "students", facts[1].TableName)
	assert.Equal(t, "name", facts[1].ColumnName)
	assert.Equal(t, "character varying", facts[1].DataType)
	assert.Equal(t, "FOREIGN KEY", *facts[2].ConstraintType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntrospectQueryFailure(t *testing.T) {
	s, mock := mockSession(t, config.PostgreSQL)
	mock.ExpectQuery("information_schema").WillReturnError(assert.AnError)

	_, err := Introspect(context.Background(), s, "")
	require.Error(t, err)
	assert.Equal(t, apperr.QueryError, apperr.KindOf(err))
}

func TestSQLiteIntrospect(t *testing.T) {
	ctx := context.Background()
	s, err := database.Open(ctx, config.SQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	db := s.Pool().DB()
	_, err = db.ExecContext(ctx, `CREATE TABLE students (id INTEGER PRIMARY KEY, name TEXT NOT NULL, born DATE)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE courses (code VARCHAR(8), title TEXT)`)
	require.NoError(t, err)

	facts, err := Introspect(ctx, s, ":memory:")
	require.NoError(t, err)

	var got []string
	for _, f := range facts {
		assert.Nil(t, f.ConstraintType)
		got = append(got, f.TableName+"."+f.ColumnName+":"+f.DataType)
	}
	assert.Equal(t, []string{
		"courses.code:VARCHAR(8)",
		"courses.title:TEXT",
		"students.id:INTEGER",
		"students.name:TEXT",
		"students.born:DATE",
	}, got)
}

func TestSQLiteIntrospectEmpty(t *testing.T) {
	ctx := context.Background()
	s, err := database.Open(ctx, config.SQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	facts, err := Introspect(ctx, s, ":memory:")
	require.NoError(t, err)
	assert.Empty(t, facts)

	text, err := AppendKnowledge("seed", facts)
	require.NoError(t, err)
	assert.Equal(t, "seed"+KnowledgeSeparator+"[]", text)
}

func TestAppendKnowledge(t *testing.T) {
	pk := "PRIMARY KEY"
	facts := []SchemaFact{
		{TableName: "students", ColumnName: "id", DataType: "integer", ConstraintType: &pk},
		{TableName: "students", ColumnName: "name", DataType: "text"},
	}

	text, err := AppendKnowledge("school data", facts)
	require.NoError(t, err)

	prefix := "school data. sql table and constrains information:"
	require.True(t, strings.HasPrefix(text, prefix))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(text, prefix)), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "PRIMARY KEY", decoded[0]["constraint_type"])
	assert.Contains(t, decoded[1], "constraint_type")
	assert.Nil(t, decoded[1]["constraint_type"])
}
