package schema

// reservedFrameMethods are pandas and polars frame method and property
// names. A column with one of these names shadows the method under
// attribute syntax, and an attribute access hitting one of them is a
// method use, not a column read.
var reservedFrameMethods = map[string]bool{
	"shape": true, "columns": true, "index": true, "iloc": true, "loc": true,
	"head": true, "tail": true, "describe": true, "info": true, "set_index": true,
	"merge": true, "concat": true, "join": true, "filter": true, "select": true,
	"with_columns": true, "group_by": true, "groupby": true, "agg": true,
	"sort": true, "sort_values": true, "drop": true, "rename": true, "apply": true,
	"map": true, "pipe": true, "transform": true, "to_pandas": true, "to_df": true,
	"schema": true, "dtypes": true, "dtype": true, "cast": true, "lazy": true,
	"collect": true, "to_dict": true, "to_list": true, "to_numpy": true,
	"to_arrow": true, "write_csv": true, "write_parquet": true, "clone": true,
	"clear": true, "extend": true, "insert": true, "item": true, "n_chunks": true,
	"null_count": true, "estimated_size": true, "width": true, "height": true,
	"rows": true, "row": true, "get_column": true, "get_columns": true,
	"explode": true, "unnest": true, "pivot": true, "unpivot": true, "melt": true,
	"sample": true, "slice": true, "limit": true, "unique": true, "n_unique": true,
	"value_counts": true, "is_empty": true, "is_duplicated": true,
	"unique_counts": true, "mean": true, "sum": true, "min": true, "max": true,
	"std": true, "var": true, "median": true, "quantile": true, "fill_null": true,
	"fill_nan": true, "interpolate": true, "shift": true, "diff": true,
	"pct_change": true, "rolling": true, "ewm": true, "count": true, "first": true,
	"last": true, "len": true, "all": true, "any": true, "copy": true,
	"values": true, "T": true, "axes": true, "empty": true, "ndim": true,
	"size": true, "keys": true, "items": true, "pop": true, "update": true,
	"get": true, "add": true, "sub": true, "mul": true, "div": true, "mod": true,
	"pow": true, "abs": true, "round": true, "floor": true, "ceil": true,
	"clip": true, "corr": true, "cov": true,
	"fillna": true, "dropna": true, "drop_nulls": true, "reset_index": true,
	"read_csv": true, "read_parquet": true, "read_json": true, "read_excel": true,
}

// IsReservedFrameMethod reports whether name collides with a pandas or
// polars frame method.
func IsReservedFrameMethod(name string) bool {
	return reservedFrameMethods[name]
}
