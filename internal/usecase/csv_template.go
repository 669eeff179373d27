package usecase

// CSVTemplate is a sample export showing the columns the parser recognizes.
const CSVTemplate = `Symbol,Side,Quantity,Fill Price,Placing Time,Closing Time,Commission,Leverage,Margin,Order ID,Order Type
BTCUSDT,Buy,1.0,42500.00,2024-01-15 09:30:00,2024-01-15 09:30:02,12.50,1,42500,1001,Market
BTCUSDT,Sell,1.0,43200.00,2024-01-16 14:05:00,2024-01-16 14:05:01,12.50,1,43200,1002,Limit
GBPUSD,Sell,100000,1.27850,2024-01-17 08:00:00,,3.00,30,4261,1003,Market
GBPUSD,Buy,100000,1.27650,2024-01-17 16:45:00,,3.00,30,4255,1004,Limit
ETHUSDT,Buy,2.5,2510.40,2024-01-18 11:20:00,,3.14,5,1255.20,1005,Market
`
