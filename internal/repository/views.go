package repository

// All views read the wholesale_prices table. Its column names are mixed
// case, so they are quoted in every statement.

// OnionCommodity is the commodity served by the onion time series.
const OnionCommodity = "Onion"

// View is a fixed, read-only query exposed on one route.
type View struct {
	Name string
	SQL  string
}

// Standard deviation uses STDDEV_POP, which matches the population
// semantics of MySQL's STDDEV that the dataset was first analysed with.
var (
	TopCommodities = View{
		Name: "top-commodities",
		SQL: `SELECT "COMM_NAME", AVG("Index_Value") AS "AverageIndex"
FROM wholesale_prices
GROUP BY "COMM_NAME"
ORDER BY "AverageIndex" DESC NULLS LAST
LIMIT 10`,
	}

	RecentEntries = View{
		Name: "recent-entries",
		SQL: `SELECT "COMM_NAME", "Date", "Index_Value"
FROM wholesale_prices
ORDER BY "Date" DESC
LIMIT 10`,
	}

	MostVolatile = View{
		Name: "most-volatile",
		SQL: `SELECT "COMM_NAME", STDDEV_POP("Index_Value") AS "Volatility"
FROM wholesale_prices
GROUP BY "COMM_NAME"
ORDER BY "Volatility" DESC NULLS LAST
LIMIT 10`,
	}

	MostStable = View{
		Name: "most-stable",
		SQL: `SELECT "COMM_NAME", STDDEV_POP("Index_Value") AS "Volatility"
FROM wholesale_prices
GROUP BY "COMM_NAME"
HAVING STDDEV_POP("Index_Value") > 0
ORDER BY "Volatility" ASC
LIMIT 10`,
	}

	HighestPeak = View{
		Name: "highest-peak",
		SQL: `SELECT "COMM_NAME", MAX("Index_Value") AS "HighestIndex"
FROM wholesale_prices
GROUP BY "COMM_NAME"
ORDER BY "HighestIndex" DESC NULLS LAST
LIMIT 10`,
	}

	LowestTrough = View{
		Name: "lowest-trough",
		SQL: `SELECT "COMM_NAME", MIN("Index_Value") AS "LowestIndex"
FROM wholesale_prices
GROUP BY "COMM_NAME"
ORDER BY "LowestIndex" ASC NULLS LAST
LIMIT 10`,
	}

	OnionPrices = View{
		Name: "onion-prices",
		SQL: `SELECT "Date", "Index_Value"
FROM wholesale_prices
WHERE "COMM_NAME" = '` + OnionCommodity + `'
ORDER BY "Date" ASC`,
	}

	YearlyAverage = View{
		Name: "yearly-average",
		SQL: `SELECT EXTRACT(YEAR FROM "Date")::int AS "Year", AVG("Index_Value") AS "AverageIndex"
FROM wholesale_prices
GROUP BY EXTRACT(YEAR FROM "Date")
ORDER BY "Year" ASC`,
	}

	UniqueCommodities = View{
		Name: "unique-commodities",
		SQL: `SELECT COUNT(DISTINCT "COMM_NAME") AS "NumberOfUniqueCommodities"
FROM wholesale_prices`,
	}

	RawPreview = View{
		Name: "raw-data-preview",
		SQL:  `SELECT * FROM wholesale_prices LIMIT 100`,
	}
)

// Views lists the fixed aggregate and projection views in route order.
var Views = []View{
	TopCommodities,
	RecentEntries,
	MostVolatile,
	MostStable,
	HighestPeak,
	LowestTrough,
	OnionPrices,
	YearlyAverage,
	UniqueCommodities,
}
