package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/renolink/RenoLink/app/models"
	"github.com/renolink/RenoLink/internal/pkg/cache"
	"github.com/renolink/RenoLink/internal/pkg/database"
)

const (
	CacheKeyLeadsTotal = "statistics:leads:total"
	CacheKeyLeadsOpen  = "statistics:leads:open"
	CacheKeyLeadsDaily = "statistics:leads:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers      = "statistics:users:total"
	CacheExpiration    = 30 * time.Minute
)

// StatisticsData holds the public platform numbers
type StatisticsData struct {
	TodayLeads int
	OpenLeads  int
	TotalLeads int
	TotalUsers int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache checks whether the cache is due for a refresh
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cache when the interval has elapsed
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		log.Println("Updating statistics cache...")
		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			log.Println("Statistics cache updated successfully")
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next check to refresh the cache
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache updates all statistics in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalLeads int64
	if err := db.Model(&models.Lead{}).Count(&totalLeads).Error; err != nil {
		log.Printf("Error counting total leads: %v", err)
		return err
	}

	var openLeads int64
	if err := db.Model(&models.Lead{}).Where("status = ? AND published = ?", models.LeadStatusOpen, true).Count(&openLeads).Error; err != nil {
		log.Printf("Error counting open leads: %v", err)
		return err
	}

	var todayLeads int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.Lead{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayLeads).Error; err != nil {
		log.Printf("Error counting today's leads: %v", err)
		return err
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyLeadsTotal, strconv.FormatInt(totalLeads, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total leads: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyLeadsOpen, strconv.FormatInt(openLeads, 10), CacheExpiration); err != nil {
		log.Printf("Error caching open leads: %v", err)
		return err
	}

	dailyKey := fmt.Sprintf(CacheKeyLeadsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayLeads, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's leads: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total users: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Total Leads: %d, Open Leads: %d, Today's Leads: %d, Total Users: %d",
		totalLeads, openLeads, todayLeads, totalUsers)

	return nil
}

// GetTotalLeads returns the total number of leads from cache or database
func GetTotalLeads() int {
	val, err := cache.Get(CacheKeyLeadsTotal)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.Lead{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total leads: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyLeadsTotal, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total leads: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetOpenLeads returns the number of open published leads from cache or database
func GetOpenLeads() int {
	val, err := cache.Get(CacheKeyLeadsOpen)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.Lead{}).Where("status = ? AND published = ?", models.LeadStatusOpen, true).Count(&count).Error; err != nil {
			log.Printf("Error counting open leads: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyLeadsOpen, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching open leads: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTodayLeads returns the number of leads submitted today from cache or database
func GetTodayLeads() int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyLeadsDaily, today)

	val, err := cache.Get(dailyKey)
	if err != nil {
		var count int64
		db := database.GetDB()
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		if err := db.Model(&models.Lead{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&count).Error; err != nil {
			log.Printf("Error counting today's leads: %v", err)
			return 0
		}

		if err := cache.Set(dailyKey, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching today's leads: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	val, err := cache.Get(CacheKeyUsers)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total users: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyUsers, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total users: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetStatisticsData returns all statistics data as StatisticsData structure
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TodayLeads: GetTodayLeads(),
		OpenLeads:  GetOpenLeads(),
		TotalLeads: GetTotalLeads(),
		TotalUsers: GetTotalUsers(),
	}
}
