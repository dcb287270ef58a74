package gridstore_test

import (
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/gridstore"
	"github.com/hupe1980/gridstore/schema"
	"github.com/hupe1980/gridstore/table"
)

func Example() {
	ctx := context.Background()

	st, err := gridstore.Open()
	if err != nil {
		panic(err)
	}
	defer st.Close()

	s := schema.MustNew("users",
		schema.Scalar("id", schema.TypeUint64),
		schema.Char("name", 16),
		schema.Scalar("flag", schema.TypeBool),
	)
	t, err := st.CreateTable(ctx, s, table.WithCapacity(4))
	if err != nil {
		panic(err)
	}

	for i, name := range []string{"Ada", "Bob", "Cy", "Dee", "Next"} {
		if _, err := st.Insert(ctx, "users", []any{i + 1, name, i%2 == 0}); err != nil {
			panic(err)
		}
	}

	name, _ := st.Read(ctx, "users", 4, "name")
	fmt.Println("grids:", t.NumGrids())
	fmt.Println("tuple 4:", name)

	// Output:
	// grids: 2
	// tuple 4: Next
}

func ExampleStore_Delete() {
	ctx := context.Background()

	st, _ := gridstore.Open()
	defer st.Close()

	s := schema.MustNew("items",
		schema.Scalar("sku", schema.TypeUint32),
		schema.Char("label", 8),
	)
	t, _ := st.CreateTable(ctx, s)

	_, _ = st.Insert(ctx, "items", []any{10, "bolt"}, []any{11, "nut"}, []any{12, nil})
	_ = st.Delete(ctx, "items", 1)

	_ = t.Dump(os.Stdout, 0, 0)

	// Output:
	// +---+-----+-------+
	// | # | sku | label |
	// +---+-----+-------+
	// | 0 | 10  | bolt  |
	// | 2 | 12  | NULL  |
	// +---+-----+-------+
}

func ExampleCorruptionError() {
	err := error(&gridstore.CorruptionError{Table: "users", TupleID: 7, Attr: 1, AttrName: "name", Matches: 2})
	fmt.Println(err)

	// Output:
	// corrupted: table "users" tuple 7 attribute 1 (name) covered by 2 grids, want exactly 1
}
