package meansend

// Price is one inserted record.
type Price struct {
	Timestamp int32
	Price     int32
}

// DB holds the prices inserted over one connection. It is not safe for
// concurrent use; each session owns its own.
type DB struct {
	prices []Price
}

// Insert adds a price, replacing any existing price at the same timestamp.
func (db *DB) Insert(timestamp, price int32) {
	for i, p := range db.prices {
		if p.Timestamp == timestamp {
			db.prices = append(db.prices[:i], db.prices[i+1:]...)
			break
		}
	}
	db.prices = append(db.prices, Price{Timestamp: timestamp, Price: price})
}

// Query returns the mean of the prices with minTime <= timestamp <= maxTime,
// truncated toward zero. An empty or inverted range yields 0.
func (db *DB) Query(minTime, maxTime int32) int32 {
	if maxTime < minTime {
		return 0
	}

	var total, n int64
	for _, p := range db.prices {
		if minTime <= p.Timestamp && p.Timestamp <= maxTime {
			total += int64(p.Price)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int32(total / n)
}

// Len returns the number of stored prices.
func (db *DB) Len() int {
	return len(db.prices)
}
