package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/util"
)

func periodQuery(c *gin.Context, fallback string) string {
	return c.DefaultQuery("period", fallback)
}

// reportSummary handles the headline financial summary
func (h *Handler) reportSummary(c *gin.Context) {
	summary, err := h.reports.Summarize(c.Request.Context(), periodQuery(c, "all"))
	if err != nil {
		writeError(c, err, "Failed to build summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// reportProfit handles per-order profit rows
func (h *Handler) reportProfit(c *gin.Context) {
	orders, err := h.reports.ProfitByOrder(c.Request.Context(), periodQuery(c, "all"))
	if err != nil {
		writeError(c, err, "Failed to build profit report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// reportInventory handles usage totals for both kinds
func (h *Handler) reportInventory(c *gin.Context) {
	period := periodQuery(c, "all")

	ingredients, err := h.reports.InventoryUsage(c.Request.Context(), models.KindIngredient, period)
	if err != nil {
		writeError(c, err, "Failed to build inventory report")
		return
	}
	packaging, err := h.reports.InventoryUsage(c.Request.Context(), models.KindPackaging, period)
	if err != nil {
		writeError(c, err, "Failed to build inventory report")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ingredients": ingredients,
		"packaging":   packaging,
	})
}

// reportTrends handles the time-bucketed trend series
func (h *Handler) reportTrends(c *gin.Context) {
	buckets, err := h.reports.Trends(c.Request.Context(), periodQuery(c, "year"))
	if err != nil {
		writeError(c, err, "Failed to build trend report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

// reportTopCustomers handles the top-customers breakdown
func (h *Handler) reportTopCustomers(c *gin.Context) {
	rows, err := h.reports.TopCustomers(c.Request.Context(), periodQuery(c, "all"))
	if err != nil {
		writeError(c, err, "Failed to build customer breakdown")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": rows})
}

// reportTopRecipes handles the top-recipes breakdown
func (h *Handler) reportTopRecipes(c *gin.Context) {
	rows, err := h.reports.TopRecipes(c.Request.Context(), periodQuery(c, "all"))
	if err != nil {
		writeError(c, err, "Failed to build recipe breakdown")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": rows})
}

// dollars formats a cent amount as a two-decimal currency string
func dollars(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

func csvResponse(c *gin.Context, name, period string) *csv.Writer {
	filename := fmt.Sprintf("%s_%s_%s.csv", name, period, time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment;filename=%s", filename))
	return csv.NewWriter(c.Writer)
}

// exportProfitCSV writes the per-order profit report as CSV
func (h *Handler) exportProfitCSV(c *gin.Context) {
	period := periodQuery(c, "all")
	orders, err := h.reports.ProfitByOrder(c.Request.Context(), period)
	if err != nil {
		writeError(c, err, "Failed to build profit report")
		return
	}

	w := csvResponse(c, "profit_report", period)
	w.Write([]string{
		"Order ID", "Date", "Customer", "Recipe", "Quantity",
		"Revenue ($)", "Ingredient Cost ($)", "Packaging Cost ($)",
		"Total Cost ($)", "Profit ($)", "Profit Margin (%)",
	})
	for i := range orders {
		row := &orders[i]
		customer := row.CustomerName
		if customer == "" {
			customer = "N/A"
		}
		recipe := row.RecipeName
		if recipe == "" {
			recipe = "Custom"
		}
		margin := 0.0
		if row.Order.SalePriceTotalCents > 0 {
			margin = float64(row.ProfitCents()) / float64(row.Order.SalePriceTotalCents) * 100
		}
		w.Write([]string{
			strconv.FormatInt(row.Order.ID, 10),
			row.Order.OrderDate.Format("2006-01-02"),
			customer,
			recipe,
			strconv.Itoa(row.Order.QuantityBaked),
			dollars(row.Order.SalePriceTotalCents),
			dollars(row.IngredientCostCents),
			dollars(row.PackagingCostCents),
			dollars(row.TotalCostCents()),
			dollars(row.ProfitCents()),
			fmt.Sprintf("%.2f", margin),
		})
	}
	w.Flush()

	util.ReportExportsTotal.WithLabelValues("profit").Inc()
}

// exportInventoryCSV writes usage totals as CSV, one section per kind
func (h *Handler) exportInventoryCSV(c *gin.Context) {
	period := periodQuery(c, "all")

	ingredients, err := h.reports.InventoryUsage(c.Request.Context(), models.KindIngredient, period)
	if err != nil {
		writeError(c, err, "Failed to build inventory report")
		return
	}
	packaging, err := h.reports.InventoryUsage(c.Request.Context(), models.KindPackaging, period)
	if err != nil {
		writeError(c, err, "Failed to build inventory report")
		return
	}

	w := csvResponse(c, "inventory_report", period)
	w.Write([]string{"INGREDIENTS"})
	w.Write([]string{"ID", "Name", "Unit", "Amount Used", "Total Cost ($)"})
	for _, row := range ingredients {
		w.Write([]string{
			strconv.FormatInt(row.ItemID, 10),
			row.Name,
			row.Unit,
			fmt.Sprintf("%.2f", row.AmountUsed),
			dollars(row.TotalCostCents),
		})
	}
	w.Write([]string{})
	w.Write([]string{"PACKAGING"})
	w.Write([]string{"ID", "Name", "Unit", "Quantity Used", "Total Cost ($)"})
	for _, row := range packaging {
		w.Write([]string{
			strconv.FormatInt(row.ItemID, 10),
			row.Name,
			row.Unit,
			fmt.Sprintf("%.2f", row.AmountUsed),
			dollars(row.TotalCostCents),
		})
	}
	w.Flush()

	util.ReportExportsTotal.WithLabelValues("inventory").Inc()
}

// exportTrendsCSV writes the trend series as CSV
func (h *Handler) exportTrendsCSV(c *gin.Context) {
	period := periodQuery(c, "year")
	buckets, err := h.reports.Trends(c.Request.Context(), period)
	if err != nil {
		writeError(c, err, "Failed to build trend report")
		return
	}

	w := csvResponse(c, "trend_report", period)
	w.Write([]string{
		"Period", "Revenue ($)", "Ingredient Cost ($)",
		"Packaging Cost ($)", "Total Cost ($)", "Profit ($)",
		"Cookies Baked",
	})
	for _, bucket := range buckets {
		w.Write([]string{
			bucket.Period,
			dollars(bucket.RevenueCents),
			dollars(bucket.IngredientCostCents),
			dollars(bucket.PackagingCostCents),
			dollars(bucket.TotalCostCents),
			dollars(bucket.ProfitCents),
			strconv.Itoa(bucket.CookiesBaked),
		})
	}
	w.Flush()

	util.ReportExportsTotal.WithLabelValues("trends").Inc()
}
