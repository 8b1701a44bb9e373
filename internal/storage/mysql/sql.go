package mysql

// cafeColumns is the canonical column list shared by every cafe SELECT;
// scanCafe reads columns in exactly this order.
const cafeColumns = `
  id,
  slug,
  name,
  address,
  postcode,
  city,
  area,
  lat,
  lng,
  phone,
  website,
  email,
  description,
  price_range,
  amenities,
  features,
  opening_hours,
  rating,
  review_count,
  thumbnail,
  images`

const upsertCafeSQL = `
INSERT INTO cafes
  (slug, name, address, postcode, city, area, lat, lng,
   phone, website, email, description, price_range,
   amenities, features, opening_hours, rating, review_count, thumbnail, images)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name          = VALUES(name),
  address       = VALUES(address),
  postcode      = VALUES(postcode),
  city          = VALUES(city),
  area          = VALUES(area),
  lat           = VALUES(lat),
  lng           = VALUES(lng),
  phone         = VALUES(phone),
  website       = VALUES(website),
  email         = VALUES(email),
  description   = VALUES(description),
  price_range   = VALUES(price_range),
  amenities     = VALUES(amenities),
  features      = VALUES(features),
  opening_hours = VALUES(opening_hours),
  rating        = VALUES(rating),
  review_count  = VALUES(review_count),
  thumbnail     = VALUES(thumbnail),
  images        = VALUES(images),
  updated_at    = CURRENT_TIMESTAMP
`

const insertImportLogSQL = `
INSERT INTO import_logs
  (filename, status, rows_total, rows_success, rows_failed, errors)
VALUES (?, ?, ?, ?, ?, ?)
`

const getCafeBySlugSQL = `
SELECT` + cafeColumns + `
FROM cafes
WHERE slug = ?
`

const listCitiesSQL = `
SELECT city, COUNT(*) AS cnt
FROM cafes
GROUP BY city
ORDER BY cnt DESC, city ASC
`

const listCafesByCitySQL = `
SELECT` + cafeColumns + `
FROM cafes
WHERE LOWER(city) = LOWER(?)
ORDER BY rating DESC, name ASC
LIMIT ? OFFSET ?
`
