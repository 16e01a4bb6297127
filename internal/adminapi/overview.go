package adminapi

import (
	"net/http"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/merchkit/storeadmin/internal/console"
	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/webserver"
)

// registerOverviewRoutes registers the dashboard statistics endpoint
func registerOverviewRoutes() {
	webserver.ApiGET("/:store_id/overview", getOverview, storeGuard)
}

type graphPoint struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

type overviewResponse struct {
	TotalRevenue string       `json:"total_revenue"`
	SalesCount   int64        `json:"sales_count"`
	StockCount   int64        `json:"stock_count"`
	AverageOrder string       `json:"average_order"`
	MedianOrder  string       `json:"median_order"`
	Graph        []graphPoint `json:"graph"`
}

type monthRevenue struct {
	Month   int
	Revenue float64
}

// monthAggregate receives one grouped record out of the dataframe.
type monthAggregate struct {
	Month   int     `mapstructure:"Month"`
	Revenue float64 `mapstructure:"Revenue_SUM"`
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// monthlyRevenue buckets order revenue into the twelve months of the
// given year.
func monthlyRevenue(rows []monthRevenue) []graphPoint {
	points := make([]graphPoint, 12)
	for i := range points {
		points[i] = graphPoint{Name: monthNames[i]}
	}
	if len(rows) == 0 {
		return points
	}

	df := dataframe.LoadStructs(rows)
	agg := df.GroupBy("Month").Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_SUM}, []string{"Revenue"})
	for _, rec := range agg.Maps() {
		var row monthAggregate
		if err := mapstructure.WeakDecode(rec, &row); err != nil {
			continue
		}
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		points[row.Month-1].Total = row.Revenue
	}
	return points
}

func getOverview(c echo.Context) error {
	sid := storeID(c)
	db := GetDB(c)

	var paidOrders []domain.Order
	err := db.Preload("Items").Preload("Items.Product").
		Where("store_id = ? AND is_paid = ?", sid, true).
		Find(&paidOrders).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var stockCount int64
	if err := db.Model(&domain.Product{}).Where("store_id = ? AND is_archived = ?", sid, false).Count(&stockCount).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	totalRevenue := decimal.Zero
	orderTotals := make([]float64, 0, len(paidOrders))
	year := time.Now().Year()
	var months []monthRevenue
	for i := range paidOrders {
		orderTotal := paidOrders[i].Total()
		totalRevenue = totalRevenue.Add(orderTotal)
		orderTotals = append(orderTotals, orderTotal.InexactFloat64())
		if paidOrders[i].CreatedAt.Year() == year {
			months = append(months, monthRevenue{
				Month:   int(paidOrders[i].CreatedAt.Month()),
				Revenue: orderTotal.InexactFloat64(),
			})
		}
	}

	average, median := 0.0, 0.0
	if len(orderTotals) > 0 {
		average, _ = stats.Mean(orderTotals)
		median, _ = stats.Median(orderTotals)
	}

	return ok(c, overviewResponse{
		TotalRevenue: console.FormatUSD(totalRevenue),
		SalesCount:   int64(len(paidOrders)),
		StockCount:   stockCount,
		AverageOrder: console.FormatUSD(decimal.NewFromFloat(average)),
		MedianOrder:  console.FormatUSD(decimal.NewFromFloat(median)),
		Graph:        monthlyRevenue(months),
	})
}
